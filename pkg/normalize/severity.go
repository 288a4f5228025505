package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity buckets. Anything that is not critical, high, medium or low is
// counted as info.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// SeverityCounts holds per-bucket vulnerability counts.
type SeverityCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Info     int
}

// Total is the sum of all buckets.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

func (c *SeverityCounts) add(severity string) {
	switch Bucket(severity) {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	default:
		c.Info++
	}
}

// Bucket maps a raw severity to its bucket name.
func Bucket(severity string) string {
	switch s := strings.ToLower(strings.TrimSpace(severity)); s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return s
	default:
		return SeverityInfo
	}
}

// CountSeverities counts vulnerabilities by severity bucket. The result's
// Total always equals len(vulns).
func CountSeverities(vulns []map[string]any) SeverityCounts {
	var c SeverityCounts
	for _, v := range vulns {
		s, _ := scalar(Field(v, "severity", ""))
		c.add(s)
	}
	return c
}

var titler = cases.Title(language.Und)

// titleCase renders a severity for display ("HIGH" → "High").
func titleCase(s string) string {
	return titler.String(strings.ToLower(s))
}
