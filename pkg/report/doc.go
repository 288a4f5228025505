// Package report renders normalized dependency rows as XLSX workbooks.
//
// A workbook has up to three sheets:
//
//   - Summary: export details and the counters of the pass
//   - Dependencies: one row per dependency, bad-license rows in light red,
//     review-license rows in light amber
//   - Vulnerabilities: one row per vulnerability with a color-coded
//     severity column; omitted when there are none
//
// Large sheets are written with excelize's streaming writer. File names
// follow [FileName].
package report
