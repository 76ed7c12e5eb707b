package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/securecode-ai/securecode/internal/classifier"
)

const (
	// maxModelSnippetLen bounds the code excerpt attached to model findings,
	// which cannot be localized to a line.
	maxModelSnippetLen = 100
	// maxLineSnippetLen bounds the excerpt attached to pattern findings.
	maxLineSnippetLen = 200
)

// Engine merges deterministic pattern rules with model classifier
// predictions into one ordered findings list. It holds no mutable state;
// Detect is safe for concurrent use.
type Engine struct {
	classifier classifier.Service
	threshold  float64
	timeout    time.Duration
	logger     hclog.Logger
}

// NewEngine creates a detection engine. The classifier handle is required;
// pass classifier.Disabled() to run pattern-only.
func NewEngine(svc classifier.Service, threshold float64, timeout time.Duration, logger hclog.Logger) *Engine {
	return &Engine{
		classifier: svc,
		threshold:  threshold,
		timeout:    timeout,
		logger:     logger,
	}
}

// Detect scans code for vulnerabilities. Pattern findings come first in line
// order, then surviving model findings. A classifier failure is logged and
// degrades the result to pattern-only; it never fails the scan.
func (e *Engine) Detect(ctx context.Context, code, language string) []Finding {
	findings := scanPatterns(code)

	predictions, err := e.predict(ctx, code)
	if err != nil {
		if errors.Is(err, classifier.ErrUnavailable) {
			e.logger.Debug("classifier not configured, pattern results only")
		} else {
			e.logger.Warn("classifier failed, pattern results only", "language", language, "error", err)
		}
		return findings
	}

	seen := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		seen[f.Category] = struct{}{}
	}

	for _, pred := range predictions {
		if !KnownCategory(pred.Category) {
			e.logger.Warn("dropping prediction with unknown category", "category", pred.Category)
			continue
		}
		if pred.Confidence <= e.threshold || pred.Confidence > 1.0 {
			e.logger.Warn("dropping prediction with out-of-range confidence",
				"category", pred.Category, "confidence", pred.Confidence)
			continue
		}
		// Pattern results take precedence: first detected wins.
		if _, dup := seen[pred.Category]; dup {
			continue
		}
		seen[pred.Category] = struct{}{}

		findings = append(findings, Finding{
			ID:              uuid.NewString(),
			Category:        pred.Category,
			Severity:        SeverityFor(pred.Category),
			LineNumber:      1,
			ColumnNumber:    0,
			Message:         fmt.Sprintf("ML Model detected %s (confidence: %.0f%%)", pred.Category, pred.Confidence*100),
			CodeSnippet:     truncateSnippet(code, maxModelSnippetLen),
			ConfidenceScore: pred.Confidence,
			Source:          SourceModel,
		})
	}

	return findings
}

func (e *Engine) predict(ctx context.Context, code string) ([]classifier.Prediction, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.classifier.Predict(ctx, code, e.threshold)
}

func truncateSnippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
