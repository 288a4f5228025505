package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
)

const (
	SheetSummary         = "Summary"
	SheetDependencies    = "Dependencies"
	SheetVulnerabilities = "Vulnerabilities"
)

// Report is everything rendered into one workbook.
type Report struct {
	Title           string
	Kind            Kind
	DeploymentID    string
	RunID           string
	GeneratedAt     time.Time
	Dependencies    []normalize.Dependency
	Vulnerabilities []normalize.Vulnerability
	Summary         normalize.Summary
}

var dependencyHeaders = []string{
	"Repository ID", "Repository", "Name", "Version", "Ecosystem", "Package Manager",
	"Transitivity", "Bad_License", "Review_License", "Licenses", "PURL",
	"Vulnerabilities", "Critical", "High", "Medium", "Low", "Info",
	"First Seen", "Last Seen", "Projects",
}

var vulnerabilityHeaders = []string{
	"Dependency Name", "Dependency Version", "Vulnerability ID", "Severity", "Description",
}

// severityColumn is the 0-based index of Severity in vulnerabilityHeaders.
const severityColumn = 3

// Writer renders reports to XLSX files.
type Writer struct {
	Logger *log.Logger
}

// NewWriter creates a Writer. A nil logger selects log.Default().
func NewWriter(logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{Logger: logger}
}

// Write renders r to path, creating the parent directory if needed.
func (w *Writer) Write(path string, r Report) error {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	if r.Title == "" {
		r.Title = Title(r.Kind, "")
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, st, r); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeDependencies(f, st, r.Dependencies); err != nil {
		return fmt.Errorf("write dependencies sheet: %w", err)
	}
	if len(r.Vulnerabilities) > 0 {
		if err := writeVulnerabilities(f, st, r.Vulnerabilities); err != nil {
			return fmt.Errorf("write vulnerabilities sheet: %w", err)
		}
	} else {
		w.Logger.Debug("no vulnerabilities, skipping sheet")
	}
	f.SetActiveSheet(0)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       r.Title,
		Creator:     "semgrep-deps-export",
		Identifier:  r.RunID,
		Description: "Deployment " + r.DeploymentID,
		Created:     r.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		w.Logger.Info("excel export completed", "path", path,
			"dependencies", len(r.Dependencies), "vulnerabilities", len(r.Vulnerabilities),
			"size_mb", fmt.Sprintf("%.2f", float64(info.Size())/(1<<20)))
	}
	return nil
}

func writeSummary(f *excelize.File, st *styles, r Report) error {
	s := r.Summary
	rows := []struct {
		label   string
		value   any
		section bool
	}{
		{label: "Export Details", section: true},
		{label: "Deployment ID:", value: r.DeploymentID},
		{label: "Export Date:", value: r.GeneratedAt.UTC().Format(normalize.TimestampLayout)},
		{label: "Run ID:", value: r.RunID},
		{},
		{label: "Dependencies Summary", section: true},
		{label: "Total Dependencies:", value: s.Dependencies.Total},
		{label: "With Vulnerabilities:", value: s.Dependencies.WithVulnerabilities},
		{label: "Without Vulnerabilities:", value: s.Dependencies.WithoutVulnerabilities},
		{label: "With Bad Licenses:", value: s.Dependencies.WithBadLicenses},
		{label: "With Review Licenses:", value: s.Dependencies.WithReviewLicenses},
		{},
		{label: "Vulnerabilities Summary", section: true},
		{label: "Total Vulnerabilities:", value: s.Vulnerabilities.Total},
		{label: "Critical:", value: s.Vulnerabilities.Critical},
		{label: "High:", value: s.Vulnerabilities.High},
		{label: "Medium:", value: s.Vulnerabilities.Medium},
		{label: "Low:", value: s.Vulnerabilities.Low},
		{label: "Info:", value: s.Vulnerabilities.Info},
		{},
		{label: "Processing", section: true},
		{label: "Records Processed:", value: s.Processing.TotalProcessed},
		{label: "Validation Errors:", value: s.Processing.ValidationErrors},
		{label: "Transformation Errors:", value: s.Processing.TransformationErrors},
	}

	if err := f.SetCellValue(SheetSummary, "A1", r.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", st.title); err != nil {
		return err
	}
	if err := f.MergeCell(SheetSummary, "A1", "D1"); err != nil {
		return err
	}

	for i, row := range rows {
		n := i + 3
		if row.label == "" {
			continue
		}
		a := fmt.Sprintf("A%d", n)
		if err := f.SetCellValue(SheetSummary, a, row.label); err != nil {
			return err
		}
		if row.section {
			if err := f.SetCellStyle(SheetSummary, a, a, st.section); err != nil {
				return err
			}
			continue
		}
		if err := f.SetCellValue(SheetSummary, fmt.Sprintf("B%d", n), row.value); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetSummary, "A", "A", 25); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 40)
}

func dependencyValues(d normalize.Dependency) []any {
	return []any{
		d.RepositoryID, d.RepositoryName, d.Name, d.Version, d.Ecosystem, d.PackageManager,
		d.Transitivity, d.BadLicense, d.ReviewLicense, d.Licenses, d.PURL,
		d.VulnerabilityCount, d.Severities.Critical, d.Severities.High, d.Severities.Medium,
		d.Severities.Low, d.Severities.Info, d.FirstSeen, d.LastSeen, d.Projects,
	}
}

func vulnerabilityValues(v normalize.Vulnerability) []any {
	return []any{v.DependencyName, v.DependencyVersion, v.ID, v.Severity, v.Description}
}

func writeDependencies(f *excelize.File, st *styles, deps []normalize.Dependency) error {
	values := make([][]any, len(deps))
	for i, d := range deps {
		values[i] = dependencyValues(d)
	}
	return writeTable(f, SheetDependencies, dependencyHeaders, values, 50, st.header, func(row, _ int) int {
		return st.row(deps[row].BadLicense, deps[row].ReviewLicense)
	})
}

func writeVulnerabilities(f *excelize.File, st *styles, vulns []normalize.Vulnerability) error {
	values := make([][]any, len(vulns))
	for i, v := range vulns {
		values[i] = vulnerabilityValues(v)
	}
	return writeTable(f, SheetVulnerabilities, vulnerabilityHeaders, values, 80, st.header, func(row, col int) int {
		if col == severityColumn {
			if id, ok := st.severity[vulns[row].Severity]; ok {
				return id
			}
		}
		return st.cell
	})
}

// writeTable streams a header row and data rows into a new sheet with a
// frozen header. style picks the style id of each data cell.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any, maxWidth int, headerStyle int, style func(row, col int) int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	for col, width := range columnWidths(headers, rows, maxWidth) {
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return err
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, values := range rows {
		cells := make([]any, len(values))
		for c, v := range values {
			cells[c] = excelize.Cell{StyleID: style(r, c), Value: v}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// columnWidths sizes each column to its longest value plus padding, capped
// at maxWidth.
func columnWidths(headers []string, rows [][]any, maxWidth int) []float64 {
	widths := make([]float64, len(headers))
	for i, h := range headers {
		longest := utf8.RuneCountInString(h)
		for _, row := range rows {
			if n := utf8.RuneCountInString(fmt.Sprint(row[i])); n > longest {
				longest = n
			}
		}
		widths[i] = float64(min(longest+2, maxWidth))
	}
	return widths
}
