package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/occupancy-sim/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(seed int64) *RunRecord {
	return &RunRecord{
		Seed:         seed,
		Samples:      400,
		WarmUp:       1,
		Workers:      2,
		MaxDuration:  3,
		Mean:         1.98,
		ExpectedMean: 2,
		Distribution: sim.TenancyDistribution{{Duration: 1, Weight: 0.5}, {Duration: 3, Weight: 0.5}},
		Counts:       []int64{0, 40, 320, 40},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	rec := sampleRecord(42)
	rec.CreatedAt = created
	id, err := s.SaveRun(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)

	got, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.Seed, got.Seed)
	assert.Equal(t, rec.Samples, got.Samples)
	assert.Equal(t, rec.WarmUp, got.WarmUp)
	assert.Equal(t, rec.Workers, got.Workers)
	assert.Equal(t, rec.MaxDuration, got.MaxDuration)
	assert.Equal(t, rec.Mean, got.Mean)
	assert.Equal(t, rec.ExpectedMean, got.ExpectedMean)
	assert.Equal(t, rec.Distribution, got.Distribution)
	assert.Equal(t, rec.Counts, got.Counts)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, created)

	h, err := got.Histogram()
	require.NoError(t, err)
	assert.Equal(t, int64(400), h.Total())
	assert.Equal(t, 3, h.MaxObserved())
}

func TestStore_SaveDefaultsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	rec := sampleRecord(1)
	before := time.Now().Add(-time.Second)
	_, err := s.SaveRun(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, rec.CreatedAt.After(before))
}

func TestStore_GetMissingRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound), "got %v", err)
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for seed := int64(1); seed <= 3; seed++ {
		_, err := s.SaveRun(ctx, sampleRecord(seed))
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].Seed)
	assert.Equal(t, int64(1), all[2].Seed)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(2), limited[1].Seed)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SaveRun(context.Background(), sampleRecord(5))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Equal(t, path, s.Path())
	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(5), runs[0].Seed)
}

func TestOpenExisting(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "typo.db")

	_, err := OpenExisting(missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDatabase), "got %v", err)
	assert.Contains(t, err.Error(), missing)
	_, statErr := os.Stat(missing)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "a missing database must not be created")

	_, err = OpenExisting(dir)
	assert.Error(t, err, "a directory is not a database")

	path := filepath.Join(dir, "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SaveRun(context.Background(), sampleRecord(8))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenExisting(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
