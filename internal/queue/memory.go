package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryQueue is a process-local Queue with the same consumer-group contract
// as the Redis implementation. It backs tests and single-process development
// runs; it is not durable across restarts.
type MemoryQueue struct {
	mu      sync.Mutex
	nextSeq int64
	log     []Message
	groups  map[string]*memoryGroup
	now     func() time.Time
}

type memoryGroup struct {
	// cursor indexes the next entry in the log not yet delivered to anyone
	// in this group.
	cursor  int
	pending map[string]*pendingEntry
}

type pendingEntry struct {
	message     Message
	consumer    string
	deliveredAt time.Time
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *MemoryQueue {
	return &MemoryQueue{
		groups: make(map[string]*memoryGroup),
		now:    time.Now,
	}
}

// Publish appends the entry to the log.
func (q *MemoryQueue) Publish(ctx context.Context, e Entry) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.ProjectID == "" {
		e.ProjectID = DefaultProjectID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = q.now().UTC()
	}

	q.nextSeq++
	id := fmt.Sprintf("%d-0", q.nextSeq)
	q.log = append(q.log, Message{ID: id, Entry: e})
	return id, nil
}

// EnsureGroup registers the group; repeated calls are no-ops.
func (q *MemoryQueue) EnsureGroup(ctx context.Context, group string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.groups[group]; !ok {
		q.groups[group] = &memoryGroup{pending: make(map[string]*pendingEntry)}
	}
	return nil
}

// ReadGroup delivers up to count undelivered entries, polling up to block
// when none are available.
func (q *MemoryQueue) ReadGroup(ctx context.Context, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	deadline := q.now().Add(block)
	for {
		messages, err := q.take(group, consumer, count)
		if err != nil || len(messages) > 0 {
			return messages, err
		}
		if block <= 0 || !q.now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) take(group, consumer string, count int64) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	g, ok := q.groups[group]
	if !ok {
		return nil, fmt.Errorf("no such consumer group %q", group)
	}

	var messages []Message
	for g.cursor < len(q.log) && int64(len(messages)) < count {
		m := q.log[g.cursor]
		g.cursor++
		g.pending[m.ID] = &pendingEntry{
			message:     m,
			consumer:    consumer,
			deliveredAt: q.now(),
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Ack drops entries from the group's pending set.
func (q *MemoryQueue) Ack(ctx context.Context, group string, ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	g, ok := q.groups[group]
	if !ok {
		return fmt.Errorf("no such consumer group %q", group)
	}
	for _, id := range ids {
		delete(g.pending, id)
	}
	return nil
}

// Claim hands entries pending longer than minIdle over to consumer.
func (q *MemoryQueue) Claim(ctx context.Context, group, consumer string, minIdle time.Duration, count int64) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	g, ok := q.groups[group]
	if !ok {
		return nil, fmt.Errorf("no such consumer group %q", group)
	}

	cutoff := q.now().Add(-minIdle)
	var messages []Message
	for _, p := range g.pending {
		if int64(len(messages)) >= count {
			break
		}
		if p.deliveredAt.After(cutoff) {
			continue
		}
		p.consumer = consumer
		p.deliveredAt = q.now()
		messages = append(messages, p.message)
	}
	return messages, nil
}

// PendingCount reports the size of the group's pending set. Test helper.
func (q *MemoryQueue) PendingCount(group string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if g, ok := q.groups[group]; ok {
		return len(g.pending)
	}
	return 0
}

// Len reports the total number of entries ever published. Test helper.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.log)
}
