package normalize

import (
	"slices"
	"strings"
)

// LicenseSet is a case-insensitive set of license identifiers.
type LicenseSet map[string]struct{}

// NewLicenseSet builds a set from identifiers. Entries are trimmed and
// lowercased; blank entries are ignored.
func NewLicenseSet(licenses ...string) LicenseSet {
	s := make(LicenseSet, len(licenses))
	for _, l := range licenses {
		if k := normalizeLicense(l); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Match reports whether any of licenses is in s. An empty set or an empty
// list never matches.
func (s LicenseSet) Match(licenses []string) bool {
	if len(s) == 0 {
		return false
	}
	return slices.ContainsFunc(licenses, func(l string) bool {
		_, ok := s[normalizeLicense(l)]
		return ok
	})
}

// Len returns the number of distinct identifiers.
func (s LicenseSet) Len() int {
	return len(s)
}

func normalizeLicense(l string) string {
	return strings.ToLower(strings.TrimSpace(l))
}

// SplitList parses a comma-separated list, trimming entries and dropping
// empty ones.
func SplitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// joinOr joins items with ", " or returns fallback for an empty list.
func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
