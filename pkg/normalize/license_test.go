package normalize

import (
	"strings"
	"testing"
)

func TestLicenseSetMatch(t *testing.T) {
	tests := []struct {
		name     string
		set      []string
		licenses []string
		want     bool
	}{
		{"exact", []string{"GPL-3.0"}, []string{"GPL-3.0"}, true},
		{"case insensitive", []string{"gpl-3.0"}, []string{"GPL-3.0"}, true},
		{"trimmed both sides", []string{" GPL-3.0 "}, []string{"  gpl-3.0"}, true},
		{"one of many", []string{"AGPL-3.0"}, []string{"MIT", "AGPL-3.0"}, true},
		{"no match", []string{"GPL-3.0"}, []string{"MIT"}, false},
		{"empty input", []string{"GPL-3.0"}, nil, false},
		{"empty set", nil, []string{"GPL-3.0"}, false},
		{"blank entries ignored", []string{" ", ""}, []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewLicenseSet(tt.set...).Match(tt.licenses); got != tt.want {
				t.Errorf("Match(%v) against %v = %v, want %v", tt.licenses, tt.set, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"GPL-3.0", "GPL-3.0"},
		{" GPL-3.0 , AGPL-3.0,,", "GPL-3.0|AGPL-3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := strings.Join(SplitList(tt.in), "|"); got != tt.want {
				t.Errorf("SplitList(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPackageManager(t *testing.T) {
	tests := []struct {
		ecosystem string
		want      string
	}{
		{"npm", "npm"},
		{"pypi", "pip"},
		{"PyPI", "pip"},
		{"go", "go"},
		{"cocoapods", "cocoapods"},
		{"hex", "hex"},
		{"Unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ecosystem, func(t *testing.T) {
			if got := PackageManager(tt.ecosystem); got != tt.want {
				t.Errorf("PackageManager(%q) = %q, want %q", tt.ecosystem, got, tt.want)
			}
		})
	}
}
