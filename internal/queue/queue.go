package queue

import (
	"context"
	"time"
)

// DefaultProjectID is used when a request does not name a project. It also
// serves as the logical client identity for result pushes.
const DefaultProjectID = "default"

// Entry is one analysis request on the stream. Entries are immutable once
// published.
type Entry struct {
	AnalysisID string
	ScanID     string
	Code       string
	FilePath   string
	Language   string
	ProjectID  string
	Timestamp  time.Time
}

// Message is a delivered entry together with its stream id.
type Message struct {
	ID    string
	Entry Entry
}

// Queue is a durable, totally ordered, append-only log with competing
// consumers. Each live entry is delivered to exactly one consumer within a
// group and stays pending until acknowledged, giving at-least-once delivery.
type Queue interface {
	// Publish appends an entry and returns its monotonically increasing id.
	Publish(ctx context.Context, e Entry) (string, error)

	// EnsureGroup creates the consumer group if needed. It is idempotent and
	// must not fail when the group already exists.
	EnsureGroup(ctx context.Context, group string) error

	// ReadGroup delivers up to count new entries to the named consumer,
	// blocking up to block when the stream is empty.
	ReadGroup(ctx context.Context, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// Ack removes entries from the group's pending set. Consumers must ack
	// only after the result is persisted.
	Ack(ctx context.Context, group string, ids ...string) error

	// Claim transfers entries that have been pending longer than minIdle to
	// the named consumer, reclaiming work orphaned by a dead consumer.
	Claim(ctx context.Context, group, consumer string, minIdle time.Duration, count int64) ([]Message, error)
}
