package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securecode-ai/securecode/internal/detect"
	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

func TestSaveAndGetResult(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	outcome := Outcome{
		AnalysisID:  "a1",
		Status:      StatusCompleted,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
		Findings: []detect.Finding{
			{ID: "f1", Category: detect.CategorySQLInjection, Severity: detect.SeverityCritical},
		},
		Found: 1,
	}
	require.NoError(t, store.SaveResult(ctx, outcome, time.Minute))

	got, err := store.GetResult(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, outcome, got)
}

func TestGetResultPrefersProcessedOverQueued(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveQueued(ctx, Outcome{AnalysisID: "a1", Status: StatusQueued}, time.Minute))

	got, err := store.GetResult(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)

	require.NoError(t, store.SaveResult(ctx, Outcome{AnalysisID: "a1", Status: StatusCompleted}, time.Minute))

	got, err = store.GetResult(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestGetResultNotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.GetResult(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, sharederrors.IsNotFound(err))
}

func TestGetResultExpired(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, Outcome{AnalysisID: "a1", Status: StatusCompleted}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := store.GetResult(ctx, "a1")
	assert.True(t, sharederrors.IsNotFound(err))
}
