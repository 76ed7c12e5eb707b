package scans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securecode-ai/securecode/internal/detect"
	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

func TestScanLifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	scan, err := store.CreateScan(ctx, TypeRealtime, StatusRunning)
	require.NoError(t, err)
	require.NotEmpty(t, scan.ID)
	assert.Equal(t, StatusRunning, scan.Status)

	findings := []detect.Finding{
		{ID: "f1", Category: detect.CategoryXSS, Severity: detect.SeverityHigh, LineNumber: 2},
	}
	require.NoError(t, store.AddVulnerabilities(ctx, scan.ID, "app.js", findings))
	require.NoError(t, store.CompleteScan(ctx, scan.ID, 1, 1))

	got, vulns, err := store.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 1, got.TotalVulnerabilities)
	require.Len(t, vulns, 1)
	assert.Equal(t, "app.js", vulns[0].FilePath)
	assert.Equal(t, "open", vulns[0].Status)
}

func TestFailScan(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	scan, err := store.CreateScan(ctx, TypeFile, StatusQueued)
	require.NoError(t, err)
	require.NoError(t, store.FailScan(ctx, scan.ID))

	got, _, err := store.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
}

func TestGetScanNotFound(t *testing.T) {
	store := NewMemory()

	_, _, err := store.GetScan(context.Background(), "missing")
	assert.True(t, sharederrors.IsNotFound(err))
}

func TestListScansPagination(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		// Deterministic, strictly increasing start times.
		i := i
		store.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		_, err := store.CreateScan(ctx, TypeRealtime, StatusRunning)
		require.NoError(t, err)
	}

	page, total, err := store.ListScans(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	// Newest first.
	assert.True(t, page[0].StartedAt.After(page[1].StartedAt))

	rest, _, err := store.ListScans(ctx, 10, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	empty, _, err := store.ListScans(ctx, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
