package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGroup = "analysis_workers"

func publishN(t *testing.T, q *MemoryQueue, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := q.Publish(context.Background(), Entry{
			AnalysisID: "a",
			Code:       "code",
			FilePath:   "main.go",
			Language:   "go",
		})
		require.NoError(t, err)
	}
}

func TestEnsureGroupIdempotent(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, q.EnsureGroup(ctx, testGroup))
	require.NoError(t, q.EnsureGroup(ctx, testGroup))
}

func TestPublishAssignsIncreasingIDs(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	first, err := q.Publish(ctx, Entry{AnalysisID: "a1"})
	require.NoError(t, err)
	second, err := q.Publish(ctx, Entry{AnalysisID: "a2"})
	require.NoError(t, err)

	assert.Equal(t, "1-0", first)
	assert.Equal(t, "2-0", second)
}

func TestPublishAppliesDefaults(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.EnsureGroup(ctx, testGroup))

	_, err := q.Publish(ctx, Entry{AnalysisID: "a1"})
	require.NoError(t, err)

	messages, err := q.ReadGroup(ctx, testGroup, "c1", 1, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, DefaultProjectID, messages[0].Entry.ProjectID)
	assert.False(t, messages[0].Entry.Timestamp.IsZero())
}

func TestCompetingConsumers(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.EnsureGroup(ctx, testGroup))
	publishN(t, q, 4)

	first, err := q.ReadGroup(ctx, testGroup, "c1", 3, 0)
	require.NoError(t, err)
	second, err := q.ReadGroup(ctx, testGroup, "c2", 3, 0)
	require.NoError(t, err)

	// Every entry goes to exactly one consumer within the group.
	require.Len(t, first, 3)
	require.Len(t, second, 1)
	seen := make(map[string]struct{})
	for _, m := range append(first, second...) {
		_, dup := seen[m.ID]
		assert.False(t, dup, "entry %s delivered twice", m.ID)
		seen[m.ID] = struct{}{}
	}
}

func TestAckRemovesPending(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.EnsureGroup(ctx, testGroup))
	publishN(t, q, 2)

	messages, err := q.ReadGroup(ctx, testGroup, "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, 2, q.PendingCount(testGroup))

	require.NoError(t, q.Ack(ctx, testGroup, messages[0].ID))
	assert.Equal(t, 1, q.PendingCount(testGroup))

	require.NoError(t, q.Ack(ctx, testGroup, messages[1].ID))
	assert.Equal(t, 0, q.PendingCount(testGroup))
}

func TestClaimRedeliversUnacked(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.EnsureGroup(ctx, testGroup))
	publishN(t, q, 1)

	// Consumer c1 reads and dies without acking.
	read, err := q.ReadGroup(ctx, testGroup, "c1", 1, 0)
	require.NoError(t, err)
	require.Len(t, read, 1)

	time.Sleep(10 * time.Millisecond)

	// Not yet idle long enough.
	claimed, err := q.Claim(ctx, testGroup, "c2", time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	// Past the visibility timeout the entry moves to c2.
	claimed, err = q.Claim(ctx, testGroup, "c2", 5*time.Millisecond, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, read[0].ID, claimed[0].ID)
	assert.Equal(t, read[0].Entry.AnalysisID, claimed[0].Entry.AnalysisID)

	// Acking under the group settles it for good.
	require.NoError(t, q.Ack(ctx, testGroup, claimed[0].ID))
	assert.Equal(t, 0, q.PendingCount(testGroup))
}

func TestReadGroupBlockTimeout(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.EnsureGroup(ctx, testGroup))

	start := time.Now()
	messages, err := q.ReadGroup(ctx, testGroup, "c1", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestReadGroupUnknownGroup(t *testing.T) {
	q := NewMemory()

	_, err := q.ReadGroup(context.Background(), "nope", "c1", 1, 0)
	require.Error(t, err)
}
