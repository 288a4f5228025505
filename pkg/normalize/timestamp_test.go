package normalize

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-01-01T10:00:00Z", "2023-01-01 10:00:00 UTC"},
		{"2023-01-01T10:00:00.123456Z", "2023-01-01 10:00:00 UTC"},
		{"2023-01-01T10:00:00+00:00", "2023-01-01 10:00:00 UTC"},
		{"2023-01-01T12:00:00+02:00", "2023-01-01 10:00:00 UTC"},
		{"2023-01-01T10:00:00", "2023-01-01 10:00:00 UTC"},
		{"2023-01-01", "2023-01-01 00:00:00 UTC"},
		{"not-a-date", "not-a-date"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
