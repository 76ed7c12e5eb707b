package detect

// Vulnerability categories form a fixed vocabulary; every finding carries
// exactly one of them.
const (
	CategorySQLInjection            = "SQL Injection"
	CategoryXSS                     = "Cross-Site Scripting (XSS)"
	CategoryHardcodedSecrets        = "Hardcoded Secrets"
	CategoryPathTraversal           = "Path Traversal"
	CategoryCommandInjection        = "Command Injection"
	CategoryInsecureDeserialization = "Insecure Deserialization"
	CategorySSRF                    = "SSRF"
	CategoryXXE                     = "XXE"
	CategoryBufferOverflow          = "Buffer Overflow"
	CategoryRaceCondition           = "Race Condition"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Finding sources: deterministic textual rules vs. the model classifier.
const (
	SourcePattern = "pattern"
	SourceModel   = "model"
)

var categories = map[string]struct{}{
	CategorySQLInjection:            {},
	CategoryXSS:                     {},
	CategoryHardcodedSecrets:        {},
	CategoryPathTraversal:           {},
	CategoryCommandInjection:        {},
	CategoryInsecureDeserialization: {},
	CategorySSRF:                    {},
	CategoryXXE:                     {},
	CategoryBufferOverflow:          {},
	CategoryRaceCondition:           {},
}

// KnownCategory reports whether category belongs to the fixed vocabulary.
func KnownCategory(category string) bool {
	_, ok := categories[category]
	return ok
}

// Finding is one detected vulnerability instance.
type Finding struct {
	ID              string  `json:"id"`
	Category        string  `json:"category"`
	Severity        string  `json:"severity"`
	LineNumber      int     `json:"line_number"`
	ColumnNumber    int     `json:"column_number"`
	Message         string  `json:"message"`
	CodeSnippet     string  `json:"code_snippet"`
	ConfidenceScore float64 `json:"confidence_score"`
	Source          string  `json:"source"`
}
