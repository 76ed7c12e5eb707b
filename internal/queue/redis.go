package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// Wire field names of a stream entry.
const (
	fieldAnalysisID = "analysis_id"
	fieldScanID     = "scan_id"
	fieldCode       = "code"
	fieldFilePath   = "file_path"
	fieldLanguage   = "language"
	fieldProjectID  = "project_id"
	fieldTimestamp  = "timestamp"
)

// RedisQueue implements Queue on a Redis Stream. Durability, total order and
// consumer-group bookkeeping come from Redis itself; this type only carries
// the entry schema.
type RedisQueue struct {
	rdb    *redis.Client
	stream string
	logger hclog.Logger
}

// NewRedis creates a queue on the named stream.
func NewRedis(rdb *redis.Client, stream string, logger hclog.Logger) *RedisQueue {
	return &RedisQueue{
		rdb:    rdb,
		stream: stream,
		logger: logger,
	}
}

// Publish appends the entry with XADD and returns the stream id.
func (q *RedisQueue) Publish(ctx context.Context, e Entry) (string, error) {
	projectID := e.ProjectID
	if projectID == "" {
		projectID = DefaultProjectID
	}
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	id, err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			fieldAnalysisID: e.AnalysisID,
			fieldScanID:     e.ScanID,
			fieldCode:       e.Code,
			fieldFilePath:   e.FilePath,
			fieldLanguage:   e.Language,
			fieldProjectID:  projectID,
			fieldTimestamp:  timestamp.Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		return "", sharederrors.NewTransientError("queue publish", err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group with MKSTREAM, tolerating the
// BUSYGROUP response when it already exists.
func (q *RedisQueue) EnsureGroup(ctx context.Context, group string) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, group, "0").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			q.logger.Debug("consumer group already exists", "group", group)
			return nil
		}
		return sharederrors.NewTransientError("queue ensure group", err)
	}
	q.logger.Info("consumer group created", "stream", q.stream, "group", group)
	return nil
}

// ReadGroup blocks up to block for new entries addressed to this consumer.
func (q *RedisQueue) ReadGroup(ctx context.Context, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	streams, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, sharederrors.NewTransientError("queue read", err)
	}

	var messages []Message
	for _, stream := range streams {
		for _, m := range stream.Messages {
			messages = append(messages, Message{ID: m.ID, Entry: entryFromValues(m.Values)})
		}
	}
	return messages, nil
}

// Ack removes the entries from the group's pending set.
func (q *RedisQueue) Ack(ctx context.Context, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := q.rdb.XAck(ctx, q.stream, group, ids...).Err(); err != nil {
		return sharederrors.NewTransientError("queue ack", err)
	}
	return nil
}

// Claim reassigns entries pending longer than minIdle to this consumer via
// XAUTOCLAIM, scanning from the beginning of the pending list.
func (q *RedisQueue) Claim(ctx context.Context, group, consumer string, minIdle time.Duration, count int64) ([]Message, error) {
	claimed, _, err := q.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, sharederrors.NewTransientError("queue claim", err)
	}

	messages := make([]Message, 0, len(claimed))
	for _, m := range claimed {
		messages = append(messages, Message{ID: m.ID, Entry: entryFromValues(m.Values)})
	}
	return messages, nil
}

func entryFromValues(values map[string]interface{}) Entry {
	e := Entry{
		AnalysisID: stringValue(values, fieldAnalysisID),
		ScanID:     stringValue(values, fieldScanID),
		Code:       stringValue(values, fieldCode),
		FilePath:   stringValue(values, fieldFilePath),
		Language:   stringValue(values, fieldLanguage),
		ProjectID:  stringValue(values, fieldProjectID),
	}
	if e.ProjectID == "" {
		e.ProjectID = DefaultProjectID
	}
	if ts, err := time.Parse(time.RFC3339, stringValue(values, fieldTimestamp)); err == nil {
		e.Timestamp = ts
	}
	return e
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
