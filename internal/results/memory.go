package results

import (
	"context"
	"sync"
	"time"

	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// MemoryStore is a process-local Store with expiry honored on read. It backs
// tests and development runs without Redis.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	outcome   Outcome
	expiresAt time.Time
}

// NewMemory creates an empty in-memory outcome store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) SaveResult(ctx context.Context, o Outcome, ttl time.Duration) error {
	s.save(resultKeyPrefix+o.AnalysisID, o, ttl)
	return nil
}

func (s *MemoryStore) SaveQueued(ctx context.Context, o Outcome, ttl time.Duration) error {
	s.save(analysisKeyPrefix+o.AnalysisID, o, ttl)
	return nil
}

func (s *MemoryStore) save(key string, o Outcome, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryItem{outcome: o, expiresAt: s.now().Add(ttl)}
}

func (s *MemoryStore) GetResult(ctx context.Context, analysisID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{resultKeyPrefix + analysisID, analysisKeyPrefix + analysisID} {
		item, ok := s.items[key]
		if !ok {
			continue
		}
		if s.now().After(item.expiresAt) {
			delete(s.items, key)
			continue
		}
		return item.outcome, nil
	}
	return Outcome{}, sharederrors.NewNotFoundError("analysis", analysisID)
}
