package report

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
)

func sampleReport() Report {
	deps := []normalize.Dependency{
		{RepositoryID: "7", RepositoryName: "acme/web", Name: "left-pad", Version: "1.3.0",
			Ecosystem: "npm", PackageManager: "npm", Licenses: "GPL-3.0", BadLicense: true,
			VulnerabilityCount: 1, Severities: normalize.SeverityCounts{Critical: 1}},
		{RepositoryID: "7", RepositoryName: "acme/web", Name: "lodash", Version: "4.17.21",
			Ecosystem: "npm", PackageManager: "npm", Licenses: "MIT", ReviewLicense: true},
		{RepositoryID: "8", RepositoryName: "Repo-8", Name: "requests", Version: "2.31.0",
			Ecosystem: "pypi", PackageManager: "pip", Licenses: "Apache-2.0"},
	}
	vulns := []normalize.Vulnerability{
		{DependencyName: "left-pad", DependencyVersion: "1.3.0", ID: "CVE-1", Severity: "Critical", Description: "bad"},
		{DependencyName: "left-pad", DependencyVersion: "1.3.0", ID: "CVE-2", Severity: "Weird", Description: "odd"},
	}
	return Report{
		Kind:            KindFull,
		DeploymentID:    "42",
		RunID:           "run-1",
		GeneratedAt:     time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		Dependencies:    deps,
		Vulnerabilities: vulns,
		Summary:         normalize.Summarize(deps, vulns, normalize.Stats{TotalProcessed: 3}),
	}
}

func writeAndOpen(t *testing.T, r Report) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	if err := NewWriter(log.New(io.Discard)).Write(path, r); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func fillColor(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		t.Fatal(err)
	}
	st, err := f.GetStyle(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Fill.Color) == 0 {
		return ""
	}
	return strings.ToUpper(st.Fill.Color[0])
}

func TestWriteSheets(t *testing.T) {
	f := writeAndOpen(t, sampleReport())

	want := []string{SheetSummary, SheetDependencies, SheetVulnerabilities}
	if got := f.GetSheetList(); !slices.Equal(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}
}

func TestWriteDependencies(t *testing.T) {
	f := writeAndOpen(t, sampleReport())

	rows, err := f.GetRows(SheetDependencies)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if !slices.Equal(rows[0], dependencyHeaders) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "left-pad" || rows[1][7] != "TRUE" || rows[1][8] != "FALSE" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[1][11] != "1" || rows[1][12] != "1" {
		t.Errorf("vulnerability counts = %v", rows[1][11:13])
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A1", colorHeader},
		{"C2", colorBadLicense},
		{"C3", colorReviewLicense},
		{"C4", ""},
	}
	for _, tt := range tests {
		if got := fillColor(t, f, SheetDependencies, tt.cell); !strings.HasSuffix(got, tt.want) || (tt.want == "" && got != "") {
			t.Errorf("fill of %s = %q, want %q", tt.cell, got, tt.want)
		}
	}

	panes, err := f.GetPanes(SheetDependencies)
	if err != nil {
		t.Fatal(err)
	}
	if !panes.Freeze || panes.TopLeftCell != "A2" {
		t.Errorf("panes = %+v, want frozen header", panes)
	}
}

func TestWriteVulnerabilities(t *testing.T) {
	f := writeAndOpen(t, sampleReport())

	rows, err := f.GetRows(SheetVulnerabilities)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][2] != "CVE-1" || rows[1][3] != "Critical" {
		t.Fatalf("rows = %v", rows)
	}
	if got := fillColor(t, f, SheetVulnerabilities, "D2"); !strings.HasSuffix(got, severityColors["Critical"]) {
		t.Errorf("severity fill = %q, want %s", got, severityColors["Critical"])
	}
	if got := fillColor(t, f, SheetVulnerabilities, "D3"); got != "" {
		t.Errorf("unknown severity fill = %q, want none", got)
	}
}

func TestWriteOmitsEmptyVulnerabilities(t *testing.T) {
	r := sampleReport()
	r.Vulnerabilities = nil
	f := writeAndOpen(t, r)

	if slices.Contains(f.GetSheetList(), SheetVulnerabilities) {
		t.Error("Vulnerabilities sheet written for an empty list")
	}
}

func TestWriteSummary(t *testing.T) {
	f := writeAndOpen(t, sampleReport())

	cells := map[string]string{
		"A1":  "Semgrep Dependencies Export Summary",
		"B4":  "42",
		"B5":  "2024-03-05 14:07:09 UTC",
		"B6":  "run-1",
		"A9":  "Total Dependencies:",
		"B9":  "3",
		"B10": "1",
		"B12": "1",
		"B13": "1",
		"B16": "2",
		"B17": "1",
		"B21": "1",
		"B24": "3",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(SheetSummary, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestColumnWidths(t *testing.T) {
	rows := [][]any{{"abc", strings.Repeat("x", 200)}}
	got := columnWidths([]string{"Header", "B"}, rows, 50)
	if got[0] != 8 || got[1] != 50 {
		t.Errorf("columnWidths() = %v, want [8 50]", got)
	}
}
