package report

import (
	"github.com/xuri/excelize/v2"
)

const (
	colorHeader        = "366092"
	colorBadLicense    = "FFCCCC"
	colorReviewLicense = "FFF2CC"
)

// severityColors fill the severity column of the Vulnerabilities sheet.
var severityColors = map[string]string{
	"Critical": "FF0000",
	"High":     "FF6600",
	"Medium":   "FFCC00",
	"Low":      "99CC00",
	"Info":     "CCCCCC",
}

// styles holds the style ids registered in one workbook.
type styles struct {
	title    int
	section  int
	header   int
	cell     int
	bad      int
	review   int
	severity map[string]int
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newStyles(f *excelize.File) (*styles, error) {
	s := &styles{severity: make(map[string]int, len(severityColors))}
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.section, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      solid(colorHeader),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorder,
		}},
		{&s.cell, &excelize.Style{Alignment: left, Border: thinBorder}},
		{&s.bad, &excelize.Style{Alignment: left, Border: thinBorder, Fill: solid(colorBadLicense)}},
		{&s.review, &excelize.Style{Alignment: left, Border: thinBorder, Fill: solid(colorReviewLicense)}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, err
		}
		*d.dst = id
	}

	for severity, color := range severityColors {
		font := &excelize.Font{Bold: true}
		if severity == "Critical" || severity == "High" {
			font.Color = "FFFFFF"
		}
		id, err := f.NewStyle(&excelize.Style{
			Font:      font,
			Fill:      solid(color),
			Alignment: left,
			Border:    thinBorder,
		})
		if err != nil {
			return nil, err
		}
		s.severity[severity] = id
	}
	return s, nil
}

// row picks the fill of a dependency row. Bad wins over review.
func (s *styles) row(bad, review bool) int {
	switch {
	case bad:
		return s.bad
	case review:
		return s.review
	default:
		return s.cell
	}
}
