package normalize

import "testing"

func vulnList(severities ...any) []map[string]any {
	out := make([]map[string]any, len(severities))
	for i, s := range severities {
		out[i] = map[string]any{"severity": s}
	}
	return out
}

func TestCountSeverities(t *testing.T) {
	tests := []struct {
		name  string
		vulns []map[string]any
		want  SeverityCounts
	}{
		{"empty", nil, SeverityCounts{}},
		{"known buckets", vulnList("critical", "HIGH", "Medium", "low", "info"),
			SeverityCounts{Critical: 1, High: 1, Medium: 1, Low: 1, Info: 1}},
		{"unrecognized is info", vulnList("moderate", "", nil, "urgent"), SeverityCounts{Info: 4}},
		{"missing severity", []map[string]any{{"id": "x"}}, SeverityCounts{Info: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountSeverities(tt.vulns)
			if got != tt.want {
				t.Errorf("CountSeverities() = %+v, want %+v", got, tt.want)
			}
			if got.Total() != len(tt.vulns) {
				t.Errorf("Total() = %d, want %d", got.Total(), len(tt.vulns))
			}
		})
	}
}

func TestBucket(t *testing.T) {
	tests := map[string]string{
		"Critical": SeverityCritical,
		" high ":   SeverityHigh,
		"Info":     SeverityInfo,
		"Unknown":  SeverityInfo,
	}
	for in, want := range tests {
		if got := Bucket(in); got != want {
			t.Errorf("Bucket(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"critical": "Critical",
		"HIGH":     "High",
		"Unknown":  "Unknown",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
