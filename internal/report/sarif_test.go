package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/scans"
)

func TestFromScan(t *testing.T) {
	scan := scans.Scan{
		ID:        "s1",
		Type:      scans.TypeFile,
		Status:    scans.StatusCompleted,
		StartedAt: time.Now(),
	}
	vulns := []scans.Vulnerability{
		{
			Category:     detect.CategorySQLInjection,
			Severity:     detect.SeverityCritical,
			FilePath:     "db.py",
			LineNumber:   12,
			ColumnNumber: 4,
			Message:      "Potential SQL injection via string concatenation",
		},
		{
			Category:   detect.CategorySQLInjection,
			Severity:   detect.SeverityCritical,
			FilePath:   "db.py",
			LineNumber: 30,
			Message:    "Potential SQL injection via string concatenation",
		},
		{
			Category:   detect.CategoryXSS,
			Severity:   detect.SeverityHigh,
			FilePath:   "app.js",
			LineNumber: 3,
			Message:    "Direct DOM manipulation can lead to XSS",
		},
	}

	report, err := FromScan(scan, vulns)
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, "securecode", run.Tool.Driver.Name)

	// One rule per category, not per finding.
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "securecode/sql-injection", run.Tool.Driver.Rules[0].ID)

	require.Len(t, run.Results, 3)
	first := run.Results[0]
	assert.Equal(t, "error", *first.Level)
	require.Len(t, first.Locations, 1)
	physical := first.Locations[0].PhysicalLocation
	assert.Equal(t, "db.py", *physical.ArtifactLocation.URI)
	assert.Equal(t, 12, *physical.Region.StartLine)
	assert.Equal(t, 5, *physical.Region.StartColumn)
}

func TestFromScanEmpty(t *testing.T) {
	report, err := FromScan(scans.Scan{ID: "s1"}, nil)
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)
	assert.Empty(t, report.Runs[0].Results)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		severity string
		level    string
	}{
		{detect.SeverityCritical, "error"},
		{detect.SeverityHigh, "error"},
		{detect.SeverityMedium, "warning"},
		{detect.SeverityLow, "note"},
		{"UNKNOWN", "note"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			assert.Equal(t, tt.level, levelFor(tt.severity))
		})
	}
}

func TestRuleIDFor(t *testing.T) {
	assert.Equal(t, "securecode/cross-site-scripting-xss", ruleIDFor(detect.CategoryXSS))
	assert.Equal(t, "securecode/hardcoded-secrets", ruleIDFor(detect.CategoryHardcodedSecrets))
}
