package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies which pass produced a report.
type Kind string

const (
	KindFull          Kind = "full"
	KindLicenses      Kind = "licenses"
	KindPolicyBlock   Kind = "policy_block"
	KindPolicyComment Kind = "policy_comment"
	KindEcosystem     Kind = "ecosystem"
	KindRepository    Kind = "repository"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "output"

const timestampLayout = "20060102_150405"

// FileName returns the report file name for a pass:
//
//	semgrep_dependencies_{deployment}_{YYYYmmdd_HHMMSS}.xlsx
//	semgrep_dependencies_{deployment}_{kind}_{YYYYmmdd_HHMMSS}.xlsx
//
// qualifier names the ecosystem or repository for those kinds and is
// ignored otherwise.
func FileName(kind Kind, deploymentID, qualifier string, now time.Time) string {
	parts := []string{"semgrep_dependencies", deploymentID}
	switch kind {
	case KindFull, "":
	case KindEcosystem, KindRepository:
		parts = append(parts, string(kind), sanitize(qualifier))
	default:
		parts = append(parts, string(kind))
	}
	parts = append(parts, now.Format(timestampLayout))
	return strings.Join(parts, "_") + ".xlsx"
}

// Path joins dir and the FileName of a pass. An empty dir selects
// DefaultOutputDir.
func Path(dir string, kind Kind, deploymentID, qualifier string, now time.Time) string {
	if dir == "" {
		dir = DefaultOutputDir
	}
	return filepath.Join(dir, FileName(kind, deploymentID, qualifier, now))
}

// sanitize keeps qualifiers safe inside a file name.
func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// Title is the human title of a pass, used on the Summary sheet.
func Title(kind Kind, qualifier string) string {
	switch kind {
	case KindLicenses:
		return "Semgrep Dependencies Export: Bad and Review Licenses"
	case KindPolicyBlock:
		return "Semgrep Dependencies Export: License Policy Block"
	case KindPolicyComment:
		return "Semgrep Dependencies Export: License Policy Comment"
	case KindEcosystem:
		return fmt.Sprintf("Semgrep Dependencies Export: %s Ecosystem", qualifier)
	case KindRepository:
		return fmt.Sprintf("Semgrep Dependencies Export: Repository %s", qualifier)
	default:
		return "Semgrep Dependencies Export Summary"
	}
}
