package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marktest/internal/harness"
	"github.com/roach88/marktest/internal/samples"
	"github.com/roach88/marktest/internal/testutil"
)

func TestRecordRun_ReadBackEqual(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	report := createTestReport("m")

	digest, err := s.RecordRun(ctx, "run-1", report)
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestRecordRun_SampleModulesRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	h := harness.New(samples.Catalog())
	ids := testutil.NewFixedIDGenerator()

	for _, module := range []string{"sample", "sample2", "sample3", "sample4", "malformed"} {
		report, err := h.Run(module)
		require.NoError(t, err)

		id := ids.Generate()
		_, err = s.RecordRun(ctx, id, report)
		require.NoError(t, err)

		got, err := s.ReadRun(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, harness.Text(report), harness.Text(got), module)
	}
}

func TestRecordRun_SameReportSameDigest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d1, err := s.RecordRun(ctx, "run-1", createTestReport("m"))
	require.NoError(t, err)
	d2, err := s.RecordRun(ctx, "run-2", createTestReport("m"))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	d3, err := s.RecordRun(ctx, "run-3", createTestReport("other"))
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestRecordRun_IdempotentByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d1, err := s.RecordRun(ctx, "run-1", createTestReport("m"))
	require.NoError(t, err)
	d2, err := s.RecordRun(ctx, "run-1", createTestReport("m"))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	runs, err := s.ListRuns(ctx, "m")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM results WHERE run_id = 'run-1'").Scan(&count))
	assert.Equal(t, 4, count)
}

func TestRecordRun_ConflictingReport(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, "run-1", createTestReport("m"))
	require.NoError(t, err)

	_, err = s.RecordRun(ctx, "run-1", createTestReport("other"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunConflict))
}

func TestRecordRun_InvalidInput(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, "", createTestReport("m"))
	assert.Error(t, err)

	_, err = s.RecordRun(ctx, "run-1", nil)
	assert.Error(t, err)
}

func TestRecordRun_EmptyReport(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	report := harness.NewAggregator("empty").Report()

	_, err := s.RecordRun(ctx, "run-1", report)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := testutil.NewFixedIDGenerator("run-a", "run-b", "run-c")

	for _, module := range []string{"m", "other", "m"} {
		_, err := s.RecordRun(ctx, ids.Generate(), createTestReport(module))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, "m")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)
	assert.Greater(t, runs[0].Seq, runs[1].Seq)
	assert.Equal(t, 4, runs[0].Total)
	assert.Equal(t, 2, runs[0].Passed)

	none, err := s.ListRuns(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLastRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LastRun(ctx, "m")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.RecordRun(ctx, "run-1", createTestReport("m"))
	require.NoError(t, err)
	digest, err := s.RecordRun(ctx, "run-2", createTestReport("m"))
	require.NoError(t, err)

	last, err := s.LastRun(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "run-2", last.ID)
	assert.Equal(t, "m", last.Module)
	assert.Equal(t, digest, last.Digest)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	report, err := s.ReadRun(context.Background(), "missing")
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
