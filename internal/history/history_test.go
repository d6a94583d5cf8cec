package history

import (
	"context"
	"testing"
	"time"

	"github.com/avelira/devpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRepo = "/home/dev/projects/widget"

func weekMetrics(anchor time.Time, churn int) models.PeriodMetrics {
	return models.PeriodMetrics{
		Period:     models.PeriodContaining(anchor, models.Weekly),
		TotalChurn: churn,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	m := weekMetrics(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 140)
	m.LeadTimeHours = models.Float(14.4)
	require.NoError(t, s.Save(testRepo, m))

	got, err := s.Recent(testRepo, m.Period.Next(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 140, got[0].TotalChurn)
	require.NotNil(t, got[0].LeadTimeHours)
	assert.InDelta(t, 14.4, *got[0].LeadTimeHours, 1e-9)
}

func TestStore_EmptyHistory(t *testing.T) {
	s := NewStore(t.TempDir())
	got, err := s.Recent(testRepo, models.PeriodContaining(time.Now(), models.Weekly), 10)
	require.NoError(t, err)
	assert.Empty(t, got, "a missing file is an empty history, not an error")
}

func TestStore_UpsertReplacesPeriod(t *testing.T) {
	s := NewStore(t.TempDir())
	anchor := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(testRepo, weekMetrics(anchor, 100)))
	require.NoError(t, s.Save(testRepo, weekMetrics(anchor, 250)))

	got, err := s.Recent(testRepo, models.PeriodContaining(anchor, models.Weekly).Next(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "a rerun replaces its period, never duplicates it")
	assert.Equal(t, 250, got[0].TotalChurn)
}

func TestStore_RecentOrderAndFiltering(t *testing.T) {
	s := NewStore(t.TempDir())
	week3 := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	week2 := week3.AddDate(0, 0, -7)
	week1 := week3.AddDate(0, 0, -14)

	// Saved out of order, plus a monthly entry that must not leak in.
	require.NoError(t, s.Save(testRepo, weekMetrics(week3, 300)))
	require.NoError(t, s.Save(testRepo, weekMetrics(week1, 100)))
	require.NoError(t, s.Save(testRepo, weekMetrics(week2, 200)))
	require.NoError(t, s.Save(testRepo, models.PeriodMetrics{
		Period:     models.PeriodContaining(week1, models.Monthly),
		TotalChurn: 999,
	}))

	current := models.PeriodContaining(week3, models.Weekly).Next()
	got, err := s.Recent(testRepo, current, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{100, 200, 300}, []int{got[0].TotalChurn, got[1].TotalChurn, got[2].TotalChurn})

	// Strictly before: the current period itself is excluded.
	got, err = s.Recent(testRepo, models.PeriodContaining(week3, models.Weekly), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// n caps from the most recent end.
	got, err = s.Recent(testRepo, current, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 200, got[0].TotalChurn)
}

func TestStore_RepoIsolation(t *testing.T) {
	s := NewStore(t.TempDir())
	anchor := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save("/repo/a", weekMetrics(anchor, 100)))

	got, err := s.Recent("/repo/b", models.PeriodContaining(anchor, models.Weekly).Next(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepoHistory_Metrics(t *testing.T) {
	s := NewStore(t.TempDir())
	anchor := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(testRepo, weekMetrics(anchor, 140)))

	h := s.ForRepo(testRepo)
	got, err := h.Metrics(context.Background(), models.PeriodContaining(anchor, models.Weekly).Next(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Metrics(ctx, models.PeriodContaining(anchor, models.Weekly), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
