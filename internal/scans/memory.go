package scans

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/securecode-ai/securecode/internal/detect"
	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// MemoryStore is a process-local Store implementation standing in for the
// relational collaborator.
type MemoryStore struct {
	mu    sync.Mutex
	scans map[string]*Scan
	vulns map[string][]Vulnerability
	now   func() time.Time
}

// NewMemory creates an empty in-memory scan store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		scans: make(map[string]*Scan),
		vulns: make(map[string][]Vulnerability),
		now:   time.Now,
	}
}

func (s *MemoryStore) CreateScan(ctx context.Context, scanType, status string) (Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan := Scan{
		ID:        uuid.NewString(),
		Type:      scanType,
		Status:    status,
		StartedAt: s.now().UTC(),
	}
	s.scans[scan.ID] = &scan
	return scan, nil
}

func (s *MemoryStore) CompleteScan(ctx context.Context, id string, totalFiles, totalVulnerabilities int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[id]
	if !ok {
		return sharederrors.NewNotFoundError("scan", id)
	}
	completedAt := s.now().UTC()
	scan.Status = StatusCompleted
	scan.CompletedAt = &completedAt
	scan.TotalFiles = totalFiles
	scan.TotalVulnerabilities = totalVulnerabilities
	return nil
}

func (s *MemoryStore) FailScan(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[id]
	if !ok {
		return sharederrors.NewNotFoundError("scan", id)
	}
	completedAt := s.now().UTC()
	scan.Status = StatusFailed
	scan.CompletedAt = &completedAt
	return nil
}

func (s *MemoryStore) AddVulnerabilities(ctx context.Context, scanID, filePath string, findings []detect.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scans[scanID]; !ok {
		return sharederrors.NewNotFoundError("scan", scanID)
	}
	for _, f := range findings {
		s.vulns[scanID] = append(s.vulns[scanID], Vulnerability{
			ID:              f.ID,
			ScanID:          scanID,
			Category:        f.Category,
			Severity:        f.Severity,
			FilePath:        filePath,
			LineNumber:      f.LineNumber,
			ColumnNumber:    f.ColumnNumber,
			CodeSnippet:     f.CodeSnippet,
			Message:         f.Message,
			ConfidenceScore: f.ConfidenceScore,
			Status:          "open",
			CreatedAt:       s.now().UTC(),
		})
	}
	return nil
}

func (s *MemoryStore) GetScan(ctx context.Context, id string) (Scan, []Vulnerability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[id]
	if !ok {
		return Scan{}, nil, sharederrors.NewNotFoundError("scan", id)
	}
	vulns := make([]Vulnerability, len(s.vulns[id]))
	copy(vulns, s.vulns[id])
	return *scan, vulns, nil
}

func (s *MemoryStore) ListScans(ctx context.Context, limit, offset int) ([]Scan, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Scan, 0, len(s.scans))
	for _, scan := range s.scans {
		all = append(all, *scan)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}
