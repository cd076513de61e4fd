package syncrun

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	startedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	run, err := Start("run-uid-1", KindFull, startedAt)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, run.Status())
	assert.Nil(t, run.CompletedAt())

	_, err = Start("", KindFull, startedAt)
	assert.ErrorContains(t, err, "run UID")

	_, err = Start("run-uid-2", Kind("hourly"), startedAt)
	assert.ErrorContains(t, err, "invalid sync kind")
}

func TestComplete_FinalizesOnce(t *testing.T) {
	startedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	run, err := Start("run-uid-1", KindIncremental, startedAt)
	require.NoError(t, err)

	counts := Counts{Tickets: 10, Failed: 2}
	require.NoError(t, run.Complete(counts, startedAt.Add(5*time.Minute)))

	assert.Equal(t, StatusCompleted, run.Status())
	assert.Equal(t, counts, run.Counts())
	require.NotNil(t, run.CompletedAt())

	assert.Error(t, run.Complete(counts, startedAt.Add(10*time.Minute)))
	assert.Error(t, run.Fail("too late", startedAt.Add(10*time.Minute)))
}

func TestFail_FinalizesOnce(t *testing.T) {
	startedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	run, err := Start("run-uid-1", KindIncremental, startedAt)
	require.NoError(t, err)

	require.NoError(t, run.Fail("upstream unavailable", startedAt.Add(time.Minute)))

	assert.Equal(t, StatusFailed, run.Status())
	assert.Equal(t, "upstream unavailable", run.ErrorMessage())
	assert.Error(t, run.Complete(Counts{}, startedAt.Add(2*time.Minute)))
}

func TestCompletedRunKeepsFailedCount(t *testing.T) {
	startedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	run, err := Start("run-uid-1", KindFull, startedAt)
	require.NoError(t, err)

	require.NoError(t, run.Complete(Counts{Tickets: 8, Failed: 2}, startedAt.Add(time.Minute)))

	assert.Equal(t, StatusCompleted, run.Status())
	assert.Equal(t, 2, run.Counts().Failed)
}
