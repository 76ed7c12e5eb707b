package results

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// RedisStore caches outcomes in Redis with a bounded expiry.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed outcome store.
func NewRedis(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SaveResult(ctx context.Context, o Outcome, ttl time.Duration) error {
	return s.save(ctx, resultKeyPrefix+o.AnalysisID, o, ttl)
}

func (s *RedisStore) SaveQueued(ctx context.Context, o Outcome, ttl time.Duration) error {
	return s.save(ctx, analysisKeyPrefix+o.AnalysisID, o, ttl)
}

func (s *RedisStore) save(ctx context.Context, key string, o Outcome, ttl time.Duration) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return sharederrors.NewTransientError("result store set", err)
	}
	return nil
}

func (s *RedisStore) GetResult(ctx context.Context, analysisID string) (Outcome, error) {
	for _, key := range []string{resultKeyPrefix + analysisID, analysisKeyPrefix + analysisID} {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return Outcome{}, sharederrors.NewTransientError("result store get", err)
		}
		var o Outcome
		if err := json.Unmarshal(data, &o); err != nil {
			return Outcome{}, err
		}
		return o, nil
	}
	return Outcome{}, sharederrors.NewNotFoundError("analysis", analysisID)
}
