package detect

import "testing"

func TestSeverityFor(t *testing.T) {
	var tests = []struct {
		category string
		want     string
	}{
		{CategorySQLInjection, SeverityCritical},
		{CategoryCommandInjection, SeverityCritical},
		{CategoryBufferOverflow, SeverityCritical},
		{CategoryXSS, SeverityHigh},
		{CategoryPathTraversal, SeverityHigh},
		{CategoryInsecureDeserialization, SeverityHigh},
		{CategorySSRF, SeverityHigh},
		{CategoryXXE, SeverityHigh},
		{CategoryHardcodedSecrets, SeverityMedium},
		{CategoryRaceCondition, SeverityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := SeverityFor(tt.category); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory(CategorySQLInjection) {
		t.Error("SQL Injection should be a known category")
	}
	if KnownCategory("Time Travel") {
		t.Error("unexpected category should not be known")
	}
}
