package scans

import (
	"context"
	"time"

	"github.com/securecode-ai/securecode/internal/detect"
)

// Scan statuses and types mirror the persisted records of the relational
// collaborator.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	TypeRealtime = "realtime"
	TypeFile     = "file"
)

// Scan is one scan record grouping the vulnerabilities found in a run.
type Scan struct {
	ID                   string     `json:"scan_id"`
	Type                 string     `json:"scan_type"`
	Status               string     `json:"status"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	TotalFiles           int        `json:"total_files"`
	TotalVulnerabilities int        `json:"total_vulnerabilities"`
}

// Vulnerability is one persisted finding under a scan.
type Vulnerability struct {
	ID              string    `json:"id"`
	ScanID          string    `json:"scan_id"`
	Category        string    `json:"category"`
	Severity        string    `json:"severity"`
	FilePath        string    `json:"file_path"`
	LineNumber      int       `json:"line_number"`
	ColumnNumber    int       `json:"column_number"`
	CodeSnippet     string    `json:"code_snippet"`
	Message         string    `json:"message"`
	ConfidenceScore float64   `json:"confidence_score"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store is the boundary to the durable relational collaborator. Only simple
// create/query operations are consumed; schema management and persistence
// engine are outside this repository.
type Store interface {
	CreateScan(ctx context.Context, scanType, status string) (Scan, error)
	CompleteScan(ctx context.Context, id string, totalFiles, totalVulnerabilities int) error
	FailScan(ctx context.Context, id string) error
	AddVulnerabilities(ctx context.Context, scanID, filePath string, findings []detect.Finding) error
	GetScan(ctx context.Context, id string) (Scan, []Vulnerability, error)
	ListScans(ctx context.Context, limit, offset int) ([]Scan, int, error)
}
