package detect

import (
	"strings"

	"github.com/google/uuid"
)

// patternRule is one deterministic rule family. Each marker found in a line
// that also satisfies the family's secondary condition emits one finding, so
// a single line may emit several findings across or within families.
type patternRule struct {
	category   string
	severity   string
	confidence float64
	message    string
	markers    []string
	applies    func(line, lower string) bool
}

var patternRules = []patternRule{
	{
		category:   CategorySQLInjection,
		severity:   SeverityCritical,
		confidence: 0.75,
		message:    "Possible SQL injection: String concatenation in SQL query",
		markers:    []string{"execute(", "cursor.execute(", ".query(", "select * from"},
		applies: func(line, lower string) bool {
			return strings.Contains(line, "+")
		},
	},
	{
		category:   CategoryXSS,
		severity:   SeverityHigh,
		confidence: 0.68,
		message:    "Possible XSS vulnerability: Unsafe HTML manipulation",
		markers:    []string{"innerhtml =", "document.write(", "eval("},
		applies: func(line, lower string) bool {
			return true
		},
	},
	{
		category:   CategoryHardcodedSecrets,
		severity:   SeverityHigh,
		confidence: 0.82,
		message:    "Hardcoded secret detected: Use environment variables instead",
		markers:    []string{"password =", "api_key =", "secret =", "token ="},
		applies: func(line, lower string) bool {
			if !strings.Contains(line, "=") && !strings.Contains(line, ":") {
				return false
			}
			return strings.Contains(line, `"`) || strings.Contains(line, "'")
		},
	},
}

// scanPatterns runs every rule family over the code line by line. Line
// numbers are 1-indexed; the column is the byte offset of the marker.
func scanPatterns(code string) []Finding {
	var findings []Finding
	lines := strings.Split(code, "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, rule := range patternRules {
			for _, marker := range rule.markers {
				col := strings.Index(lower, marker)
				if col < 0 {
					continue
				}
				if !rule.applies(line, lower) {
					continue
				}
				findings = append(findings, Finding{
					ID:              uuid.NewString(),
					Category:        rule.category,
					Severity:        rule.severity,
					LineNumber:      i + 1,
					ColumnNumber:    col,
					Message:         rule.message,
					CodeSnippet:     truncateSnippet(strings.TrimSpace(line), maxLineSnippetLen),
					ConfidenceScore: rule.confidence,
					Source:          SourcePattern,
				})
			}
		}
	}

	return findings
}
