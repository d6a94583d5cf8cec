package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avelira/devpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPeriod = models.PeriodContaining(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), models.Weekly)

func commitAt(author string, offsetHours int, add, del int, kind models.CommitKind) models.CommitEvent {
	return models.CommitEvent{
		Hash:      fmt.Sprintf("%s-%d", author, offsetHours),
		Author:    author,
		Timestamp: testPeriod.Start.Add(time.Duration(offsetHours) * time.Hour),
		Additions: add,
		Deletions: del,
		Kind:      kind,
	}
}

func mergedPR(author string, createdOffset int, leadHours float64, ci models.CIStatus) models.PullRequestEvent {
	created := testPeriod.Start.Add(time.Duration(createdOffset) * time.Hour)
	merged := created.Add(time.Duration(leadHours * float64(time.Hour)))
	return models.PullRequestEvent{
		Author:    author,
		CreatedAt: created,
		MergedAt:  &merged,
		CI:        ci,
	}
}

func TestAnalyze_ZeroEvents(t *testing.T) {
	a := New()
	defer a.Close()

	analysis, err := a.Analyze(context.Background(), testPeriod, nil, nil)
	require.NoError(t, err, "a period with zero events is valid, not an error")

	assert.Empty(t, analysis.Authors)
	assert.Equal(t, 0, analysis.Metrics.TotalCommits)
	assert.Equal(t, 0, analysis.Metrics.TotalChurn)
	assert.Equal(t, 0, analysis.Metrics.DeployFrequency)
	assert.Nil(t, analysis.Metrics.LeadTimeHours)
	assert.Nil(t, analysis.Metrics.ReviewLatencyHours)
	assert.Nil(t, analysis.Metrics.ChangeFailureRate)
	assert.Nil(t, analysis.Metrics.MTTRHours)
}

func TestAnalyze_ReviewLatency(t *testing.T) {
	reviewed := mergedPR("alice", 1, 10, models.CIPass)
	reviewed.ReviewedAt = []time.Time{reviewed.CreatedAt.Add(3 * time.Hour)}
	alsoReviewed := mergedPR("bob", 2, 8, models.CIPass)
	alsoReviewed.ReviewedAt = []time.Time{alsoReviewed.CreatedAt.Add(5 * time.Hour)}
	unreviewed := mergedPR("carol", 3, 6, models.CIPass)

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, nil,
		[]models.PullRequestEvent{reviewed, alsoReviewed, unreviewed})
	require.NoError(t, err)

	// Unreviewed pull requests stay out of the mean.
	require.NotNil(t, analysis.Metrics.ReviewLatencyHours)
	assert.InDelta(t, 4.0, *analysis.Metrics.ReviewLatencyHours, 1e-9)
}

func TestAnalyze_AuthorStats(t *testing.T) {
	commits := []models.CommitEvent{
		commitAt("alice", 10, 100, 20, models.KindFeat),
		commitAt("alice", 20, 50, 10, models.KindOther),
		commitAt("bob", 15, 30, 0, models.KindFeat),
	}
	commits[2].AfterHours = true

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, commits, nil)
	require.NoError(t, err)

	require.Len(t, analysis.Authors, 2)

	alice := analysis.Authors["alice"]
	assert.Equal(t, 2, alice.Commits)
	assert.Equal(t, 150, alice.Additions)
	assert.Equal(t, 30, alice.Deletions)
	assert.Equal(t, 90.0, alice.AvgChurn)
	assert.Equal(t, 0, alice.AfterHoursCommits)

	bob := analysis.Authors["bob"]
	assert.Equal(t, 1, bob.Commits)
	assert.Equal(t, 30.0, bob.AvgChurn)
	assert.Equal(t, 1, bob.AfterHoursCommits)
}

func TestAnalyze_AuthorIdentityCaseSensitive(t *testing.T) {
	commits := []models.CommitEvent{
		commitAt("Alice", 10, 10, 0, models.KindOther),
		commitAt("alice", 11, 10, 0, models.KindOther),
	}

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, commits, nil)
	require.NoError(t, err)

	assert.Len(t, analysis.Authors, 2, "identity matching is exact, no fuzzy resolution")
}

// Scenario: 5 merged PRs with lead times [10,12,8,20,22]h and 1 failed CI
// out of 5 evaluated.
func TestAnalyze_DeliveryIndicators(t *testing.T) {
	prs := []models.PullRequestEvent{
		mergedPR("alice", 1, 10, models.CIPass),
		mergedPR("alice", 2, 12, models.CIPass),
		mergedPR("bob", 3, 8, models.CIPass),
		mergedPR("bob", 4, 20, models.CIFail),
		mergedPR("carol", 5, 22, models.CIPass),
	}

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, nil, prs)
	require.NoError(t, err)

	m := analysis.Metrics
	require.NotNil(t, m.LeadTimeHours)
	assert.InDelta(t, 14.4, *m.LeadTimeHours, 1e-9)
	assert.Equal(t, 5, m.DeployFrequency)
	require.NotNil(t, m.ChangeFailureRate)
	assert.InDelta(t, 20.0, *m.ChangeFailureRate, 1e-9)
}

func TestAnalyze_OpenPRsExcludedFromLeadTime(t *testing.T) {
	open := models.PullRequestEvent{
		Author:    "alice",
		CreatedAt: testPeriod.Start.Add(time.Hour),
		CI:        models.CIUnknown,
	}
	prs := []models.PullRequestEvent{open, mergedPR("bob", 2, 6, models.CIUnknown)}

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, nil, prs)
	require.NoError(t, err)

	m := analysis.Metrics
	require.NotNil(t, m.LeadTimeHours)
	assert.InDelta(t, 6.0, *m.LeadTimeHours, 1e-9)
	assert.Equal(t, 1, m.DeployFrequency)
	assert.Nil(t, m.ChangeFailureRate, "unknown CI outcomes are not evaluated")
}

func TestAnalyze_MTTR(t *testing.T) {
	tests := []struct {
		name    string
		commits []models.CommitEvent
		want    *float64
	}{
		{
			name: "fix follows feat by same author",
			commits: []models.CommitEvent{
				commitAt("alice", 10, 10, 0, models.KindFeat),
				commitAt("alice", 12, 5, 0, models.KindFix),
			},
			want: models.Float(2),
		},
		{
			name: "two pairs averaged",
			commits: []models.CommitEvent{
				commitAt("alice", 10, 10, 0, models.KindFeat),
				commitAt("alice", 12, 5, 0, models.KindFix),
				commitAt("bob", 20, 10, 0, models.KindOther),
				commitAt("bob", 26, 5, 0, models.KindFix),
			},
			want: models.Float(4),
		},
		{
			name: "fix skips earlier fixes to find non-fix",
			commits: []models.CommitEvent{
				commitAt("alice", 10, 10, 0, models.KindFeat),
				commitAt("alice", 12, 5, 0, models.KindFix),
				commitAt("alice", 13, 5, 0, models.KindFix),
			},
			// Pairs: 12-10 and 13-10, mean of 2h and 3h.
			want: models.Float(2.5),
		},
		{
			name: "cross-author proximity does not pair",
			commits: []models.CommitEvent{
				commitAt("alice", 10, 10, 0, models.KindFeat),
				commitAt("bob", 12, 5, 0, models.KindFix),
			},
			want: nil,
		},
		{
			name: "no fixes",
			commits: []models.CommitEvent{
				commitAt("alice", 10, 10, 0, models.KindFeat),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			defer a.Close()
			analysis, err := a.Analyze(context.Background(), testPeriod, tt.commits, nil)
			require.NoError(t, err)

			if tt.want == nil {
				assert.Nil(t, analysis.Metrics.MTTRHours)
				return
			}
			require.NotNil(t, analysis.Metrics.MTTRHours)
			assert.InDelta(t, *tt.want, *analysis.Metrics.MTTRHours, 1e-9)
		})
	}
}

func TestAnalyze_FilesTouched(t *testing.T) {
	c1 := commitAt("alice", 10, 10, 0, models.KindOther)
	c1.Files = []string{"a.go", "b.go"}
	c1.FilesChanged = 2
	c2 := commitAt("bob", 11, 10, 0, models.KindOther)
	c2.Files = []string{"b.go", "c.go"}
	c2.FilesChanged = 2
	c3 := commitAt("carol", 12, 10, 0, models.KindOther)
	c3.FilesChanged = 4 // no path detail

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, []models.CommitEvent{c1, c2, c3}, nil)
	require.NoError(t, err)

	// 3 distinct paths plus 4 from the pathless commit.
	assert.Equal(t, 7, analysis.Metrics.FilesTouched)
}

// The author stats must always sum to the period aggregates.
func TestAnalyze_Reconciliation(t *testing.T) {
	commits := []models.CommitEvent{
		commitAt("alice", 1, 120, 40, models.KindFeat),
		commitAt("alice", 5, 10, 2, models.KindFix),
		commitAt("bob", 9, 300, 150, models.KindOther),
		commitAt("carol", 30, 7, 0, models.KindRefactor),
	}

	a := New()
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, commits, nil)
	require.NoError(t, err)

	var commitSum, churnSum int
	for _, st := range analysis.Authors {
		commitSum += st.Commits
		churnSum += st.TotalChurn()
	}
	assert.Equal(t, analysis.Metrics.TotalCommits, commitSum)
	assert.Equal(t, analysis.Metrics.TotalChurn, churnSum)
}

func TestAnalyze_Delta(t *testing.T) {
	prior := models.PeriodMetrics{
		Period:          testPeriod.Previous(),
		TotalCommits:    3,
		TotalChurn:      100,
		DeployFrequency: 2,
		LeadTimeHours:   models.Float(10),
	}

	commits := []models.CommitEvent{commitAt("alice", 1, 150, 50, models.KindOther)}
	prs := []models.PullRequestEvent{mergedPR("alice", 2, 16, models.CIPass)}

	a := New(WithPrior(&prior))
	defer a.Close()
	analysis, err := a.Analyze(context.Background(), testPeriod, commits, prs)
	require.NoError(t, err)

	d := analysis.Metrics.Delta
	require.NotNil(t, d)
	assert.Equal(t, -2, d.TotalCommits)
	assert.Equal(t, 100, d.TotalChurn)
	assert.Equal(t, -1, d.DeployFrequency)
	require.NotNil(t, d.LeadTimeHours)
	assert.InDelta(t, 6.0, *d.LeadTimeHours, 1e-9)
	assert.Nil(t, d.ChangeFailureRate, "prior had no defined failure rate")
}
