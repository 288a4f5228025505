package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
	"github.com/matzehuels/semgrep-deps-export/pkg/pipeline"
	"github.com/matzehuels/semgrep-deps-export/pkg/report"
)

// printResult prints the written files and a summary table per report.
func printResult(res *pipeline.Result) {
	printNewline()
	printSuccess("Export completed successfully")
	for _, f := range res.Files {
		printFile(f.Path)
	}
	for _, kind := range res.Skipped {
		printDetail("skipped %s report: no matching dependencies", kind)
	}
	if rs := res.Repositories; rs != nil {
		if rs.FellBack {
			printWarning("repository listing unavailable; used the deployment-wide fetch")
		} else {
			printDetail("repositories: %d fetched, %d failed", rs.Succeeded, rs.Failed)
		}
	}
	printNewline()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Report", "Dependencies", "Vulnerable", "Bad License", "Review License",
		"Vulnerabilities", "Critical", "High", "Medium", "Low", "Dropped"})
	for _, f := range res.Files {
		tw.AppendRow(summaryRow(f))
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Transformer: highlightNonZero(text.FgHiRed)},
		{Number: 8, Transformer: highlightNonZero(text.FgRed)},
	})
	tw.Render()
	printDetail("run %s", res.RunID)
}

func summaryRow(f pipeline.File) table.Row {
	s := f.Summary
	return table.Row{
		reportLabel(f.Kind, f.Qualifier),
		s.Dependencies.Total,
		s.Dependencies.WithVulnerabilities,
		s.Dependencies.WithBadLicenses,
		s.Dependencies.WithReviewLicenses,
		s.Vulnerabilities.Total,
		s.Vulnerabilities.Critical,
		s.Vulnerabilities.High,
		s.Vulnerabilities.Medium,
		s.Vulnerabilities.Low,
		dropped(s.Processing),
	}
}

func reportLabel(kind report.Kind, qualifier string) string {
	if qualifier == "" {
		return string(kind)
	}
	return fmt.Sprintf("%s (%s)", kind, qualifier)
}

func dropped(s normalize.Stats) int {
	return s.ValidationErrors + s.TransformationErrors
}

func highlightNonZero(color text.Color) text.Transformer {
	return func(v any) string {
		if n, ok := v.(int); ok && n > 0 {
			return color.Sprint(n)
		}
		return fmt.Sprint(v)
	}
}
