package results

import (
	"context"
	"time"

	"github.com/securecode-ai/securecode/internal/detect"
)

// Outcome statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Key prefixes: the worker writes under "result:", the file-ingestion path
// records its queued marker under "analysis:".
const (
	resultKeyPrefix   = "result:"
	analysisKeyPrefix = "analysis:"
)

// Outcome is the cached result of one analysis request. It is immutable once
// the status reaches completed or failed.
type Outcome struct {
	AnalysisID  string           `json:"analysis_id"`
	ScanID      string           `json:"scan_id,omitempty"`
	Status      string           `json:"status"`
	ProcessedAt string           `json:"processed_at,omitempty"`
	Findings    []detect.Finding `json:"vulnerabilities,omitempty"`
	Found       int              `json:"vulnerabilities_found"`
}

// Store is a keyed, time-limited cache of analysis outcomes.
type Store interface {
	// SaveResult stores a processed outcome under result:{analysis_id}.
	SaveResult(ctx context.Context, o Outcome, ttl time.Duration) error

	// SaveQueued stores a queued marker under analysis:{analysis_id}.
	SaveQueued(ctx context.Context, o Outcome, ttl time.Duration) error

	// GetResult looks the outcome up, preferring the processed result over
	// the queued marker. A missing outcome yields a NotFoundError.
	GetResult(ctx context.Context, analysisID string) (Outcome, error)
}
