package detect

// severityByCategory maps model-sourced categories to severities.
// Pattern-sourced findings carry the severity attached by their rule instead.
var severityByCategory = map[string]string{
	CategorySQLInjection:            SeverityCritical,
	CategoryCommandInjection:        SeverityCritical,
	CategoryBufferOverflow:          SeverityCritical,
	CategoryXSS:                     SeverityHigh,
	CategoryPathTraversal:           SeverityHigh,
	CategoryInsecureDeserialization: SeverityHigh,
	CategorySSRF:                    SeverityHigh,
	CategoryXXE:                     SeverityHigh,
}

// SeverityFor returns the severity for a model-sourced category. Categories
// outside the critical/high sets rank MEDIUM.
func SeverityFor(category string) string {
	if severity, ok := severityByCategory[category]; ok {
		return severity
	}
	return SeverityMedium
}
