package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/queue"
	"github.com/securecode-ai/securecode/internal/results"
	"github.com/securecode-ai/securecode/internal/scans"
	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// Request is a code submission. Code, FilePath and Language are required;
// a missing ProjectID falls back to the default project.
type Request struct {
	Code      string `json:"code"`
	FilePath  string `json:"file_path"`
	Language  string `json:"language"`
	ProjectID string `json:"project_id,omitempty"`
}

// Response answers the synchronous analysis path.
type Response struct {
	AnalysisID      string           `json:"analysis_id"`
	ScanID          string           `json:"scan_id,omitempty"`
	Status          string           `json:"status"`
	Vulnerabilities []detect.Finding `json:"vulnerabilities"`
	AnalyzedAt      string           `json:"analyzed_at"`
}

// QueuedResponse answers the asynchronous file path.
type QueuedResponse struct {
	AnalysisID string `json:"analysis_id"`
	ScanID     string `json:"scan_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Gateway accepts requests, assigns identifiers, runs the engine for
// immediate feedback and enqueues entries for the asynchronous path. It owns
// an AnalysisRequest only until it is enqueued.
type Gateway struct {
	engine    *detect.Engine
	queue     queue.Queue
	results   results.Store
	scans     scans.Store
	resultTTL time.Duration
	logger    hclog.Logger
}

// New creates an ingestion gateway.
func New(engine *detect.Engine, q queue.Queue, store results.Store, scanStore scans.Store, resultTTL time.Duration, logger hclog.Logger) *Gateway {
	return &Gateway{
		engine:    engine,
		queue:     q,
		results:   store,
		scans:     scanStore,
		resultTTL: resultTTL,
		logger:    logger,
	}
}

func validate(req Request) error {
	if req.Code == "" {
		return sharederrors.NewValidationError("code", "must not be empty")
	}
	if req.FilePath == "" {
		return sharederrors.NewValidationError("file_path", "must not be empty")
	}
	if req.Language == "" {
		return sharederrors.NewValidationError("language", "must not be empty")
	}
	return nil
}

func entryFor(req Request, analysisID, scanID string) queue.Entry {
	projectID := req.ProjectID
	if projectID == "" {
		projectID = queue.DefaultProjectID
	}
	return queue.Entry{
		AnalysisID: analysisID,
		ScanID:     scanID,
		Code:       req.Code,
		FilePath:   req.FilePath,
		Language:   req.Language,
		ProjectID:  projectID,
		Timestamp:  time.Now().UTC(),
	}
}

// AnalyzeRealtime runs detection synchronously for immediate feedback and
// also enqueues the request for the asynchronous batch path. A queue outage
// degrades the async path only; the synchronous result is still returned.
func (g *Gateway) AnalyzeRealtime(ctx context.Context, req Request) (Response, error) {
	if err := validate(req); err != nil {
		return Response{}, err
	}

	analysisID := uuid.NewString()
	scan, err := g.scans.CreateScan(ctx, scans.TypeRealtime, scans.StatusRunning)
	if err != nil {
		return Response{}, err
	}

	if _, err := g.queue.Publish(ctx, entryFor(req, analysisID, scan.ID)); err != nil {
		g.logger.Warn("enqueue failed, async processing skipped for this request",
			"analysis_id", analysisID, "error", err)
	}

	findings := g.engine.Detect(ctx, req.Code, req.Language)
	if findings == nil {
		findings = []detect.Finding{}
	}

	if err := g.scans.AddVulnerabilities(ctx, scan.ID, req.FilePath, findings); err != nil {
		g.logger.Error("persisting vulnerabilities failed", "scan_id", scan.ID, "error", err)
	}
	if err := g.scans.CompleteScan(ctx, scan.ID, 1, len(findings)); err != nil {
		g.logger.Error("completing scan failed", "scan_id", scan.ID, "error", err)
	}

	return Response{
		AnalysisID:      analysisID,
		ScanID:          scan.ID,
		Status:          results.StatusCompleted,
		Vulnerabilities: findings,
		AnalyzedAt:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// AnalyzeFile accepts a whole file for asynchronous processing only: it
// records a queued marker with bounded expiry and publishes the entry. A
// queue outage here is surfaced to the caller since nothing would ever
// process the request.
func (g *Gateway) AnalyzeFile(ctx context.Context, req Request) (QueuedResponse, error) {
	if err := validate(req); err != nil {
		return QueuedResponse{}, err
	}

	analysisID := uuid.NewString()
	scan, err := g.scans.CreateScan(ctx, scans.TypeFile, scans.StatusQueued)
	if err != nil {
		return QueuedResponse{}, err
	}

	marker := results.Outcome{
		AnalysisID: analysisID,
		ScanID:     scan.ID,
		Status:     results.StatusQueued,
	}
	if err := g.results.SaveQueued(ctx, marker, g.resultTTL); err != nil {
		return QueuedResponse{}, err
	}

	if _, err := g.queue.Publish(ctx, entryFor(req, analysisID, scan.ID)); err != nil {
		return QueuedResponse{}, err
	}

	return QueuedResponse{
		AnalysisID: analysisID,
		ScanID:     scan.ID,
		Status:     results.StatusQueued,
		Message:    "File queued for analysis",
	}, nil
}

// GetResult looks up the cached outcome of an analysis.
func (g *Gateway) GetResult(ctx context.Context, analysisID string) (results.Outcome, error) {
	return g.results.GetResult(ctx, analysisID)
}

// GetScan returns a scan record with its vulnerabilities.
func (g *Gateway) GetScan(ctx context.Context, scanID string) (scans.Scan, []scans.Vulnerability, error) {
	return g.scans.GetScan(ctx, scanID)
}

// ListScans returns a page of scan records plus the overall total.
func (g *Gateway) ListScans(ctx context.Context, limit, offset int) ([]scans.Scan, int, error) {
	return g.scans.ListScans(ctx, limit, offset)
}
