package report

import (
	"fmt"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/scans"
)

const toolName = "securecode"
const toolURI = "https://github.com/securecode-ai/securecode"

// FromScan renders a completed scan and its vulnerabilities as a SARIF
// report, one rule per category encountered.
func FromScan(scan scans.Scan, vulns []scans.Vulnerability) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	seenRules := make(map[string]struct{})
	for _, v := range vulns {
		ruleID := ruleIDFor(v.Category)
		if _, ok := seenRules[ruleID]; !ok {
			seenRules[ruleID] = struct{}{}
			run.AddRule(ruleID).
				WithName(v.Category).
				WithDescription(v.Category)
		}

		region := sarif.NewRegion().WithStartLine(v.LineNumber)
		if v.ColumnNumber > 0 {
			region = region.WithStartColumn(v.ColumnNumber + 1)
		}

		run.CreateResultForRule(ruleID).
			WithLevel(levelFor(v.Severity)).
			WithMessage(sarif.NewTextMessage(v.Message)).
			AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(v.FilePath)).
					WithRegion(region),
			))
	}

	report.AddRun(run)
	return report, nil
}

// levelFor maps finding severities onto the SARIF level vocabulary.
func levelFor(severity string) string {
	switch severity {
	case detect.SeverityCritical, detect.SeverityHigh:
		return "error"
	case detect.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleIDFor(category string) string {
	slug := strings.ToLower(category)
	slug = strings.NewReplacer(" ", "-", "(", "", ")", "").Replace(slug)
	return toolName + "/" + slug
}
