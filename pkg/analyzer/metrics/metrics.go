// Package metrics computes per-author contribution statistics and
// delivery-performance indicators for one period's events.
package metrics

import (
	"context"
	"sort"

	"github.com/avelira/devpulse/pkg/analyzer"
	"github.com/avelira/devpulse/pkg/models"
)

// Analyzer computes AuthorStats and PeriodMetrics from harvested events.
type Analyzer struct {
	prior *models.PeriodMetrics
}

// Compile-time check that Analyzer implements EventAnalyzer.
var _ analyzer.EventAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithPrior supplies the previous period's metrics for delta display.
func WithPrior(prior *models.PeriodMetrics) Option {
	return func(a *Analyzer) {
		a.prior = prior
	}
}

// New creates a new metrics analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the period's statistics. Zero events yields zero totals
// and nil indicator values; absence of activity is a valid report, so no
// error path exists here.
func (a *Analyzer) Analyze(ctx context.Context, period models.Period, commits []models.CommitEvent, prs []models.PullRequestEvent) (*Analysis, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	analysis := &Analysis{
		Period:  period,
		Authors: buildAuthorStats(commits),
		Metrics: models.PeriodMetrics{Period: period},
	}

	m := &analysis.Metrics
	for _, st := range analysis.Authors {
		m.TotalCommits += st.Commits
		m.TotalChurn += st.TotalChurn()
	}
	m.FilesTouched = countFilesTouched(commits)
	m.LeadTimeHours = meanLeadTime(prs)
	m.ReviewLatencyHours = meanReviewLatency(prs)
	m.DeployFrequency = countMerged(prs)
	m.ChangeFailureRate = changeFailureRate(prs)
	m.MTTRHours = meanTimeToRecovery(commits)

	if a.prior != nil {
		m.Delta = computeDelta(*m, *a.prior)
	}

	return analysis, nil
}

// Close releases any resources held by the analyzer.
func (a *Analyzer) Close() {
}

// buildAuthorStats groups commits by author identity. Matching is
// case-sensitive and exact; no fuzzy identity resolution is attempted.
func buildAuthorStats(commits []models.CommitEvent) map[string]models.AuthorStats {
	authors := make(map[string]models.AuthorStats)
	for _, c := range commits {
		st := authors[c.Author]
		st.Author = c.Author
		st.Commits++
		st.Additions += c.Additions
		st.Deletions += c.Deletions
		if c.AfterHours {
			st.AfterHoursCommits++
		}
		authors[c.Author] = st
	}
	for author, st := range authors {
		if st.Commits > 0 {
			st.AvgChurn = float64(st.TotalChurn()) / float64(st.Commits)
		}
		authors[author] = st
	}
	return authors
}

// countFilesTouched counts distinct file paths across commits. Commits
// harvested without path detail contribute their files-changed count
// instead, which can over-count repeated files across such commits.
func countFilesTouched(commits []models.CommitEvent) int {
	seen := make(map[string]bool)
	var withoutPaths int
	for _, c := range commits {
		if len(c.Files) == 0 {
			withoutPaths += c.FilesChanged
			continue
		}
		for _, f := range c.Files {
			seen[f] = true
		}
	}
	return len(seen) + withoutPaths
}

// meanLeadTime averages creation-to-merge hours over merged pull requests.
// Returns nil when the period has none.
func meanLeadTime(prs []models.PullRequestEvent) *float64 {
	var sum float64
	var n int
	for _, pr := range prs {
		if h, ok := pr.LeadTimeHours(); ok {
			sum += h
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Float(sum / float64(n))
}

// meanReviewLatency averages creation-to-first-review hours over reviewed
// pull requests. Returns nil when the period has none.
func meanReviewLatency(prs []models.PullRequestEvent) *float64 {
	var sum float64
	var n int
	for _, pr := range prs {
		if h, ok := pr.ReviewLatencyHours(); ok {
			sum += h
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Float(sum / float64(n))
}

// countMerged counts pull requests with a merge timestamp.
func countMerged(prs []models.PullRequestEvent) int {
	var n int
	for _, pr := range prs {
		if pr.Merged() {
			n++
		}
	}
	return n
}

// changeFailureRate is failed-CI count over CI-evaluated count as a
// percentage. A period with no CI-evaluated pull requests has no defined
// rate and returns nil rather than 0.
func changeFailureRate(prs []models.PullRequestEvent) *float64 {
	var failed, evaluated int
	for _, pr := range prs {
		switch pr.CI {
		case models.CIFail:
			failed++
			evaluated++
		case models.CIPass:
			evaluated++
		}
	}
	if evaluated == 0 {
		return nil
	}
	return models.Float(float64(failed) / float64(evaluated) * 100)
}

// meanTimeToRecovery approximates MTTR as the mean gap in hours between a
// fix-tagged commit and its nearest preceding non-fix commit by the same
// author within the period. Returns nil when no such pair exists.
func meanTimeToRecovery(commits []models.CommitEvent) *float64 {
	byAuthor := make(map[string][]models.CommitEvent)
	for _, c := range commits {
		byAuthor[c.Author] = append(byAuthor[c.Author], c)
	}

	var sum float64
	var pairs int
	for _, cs := range byAuthor {
		sort.Slice(cs, func(i, j int) bool {
			return cs[i].Timestamp.Before(cs[j].Timestamp)
		})
		for i, c := range cs {
			if c.Kind != models.KindFix {
				continue
			}
			for j := i - 1; j >= 0; j-- {
				if cs[j].Kind == models.KindFix {
					continue
				}
				sum += c.Timestamp.Sub(cs[j].Timestamp).Hours()
				pairs++
				break
			}
		}
	}
	if pairs == 0 {
		return nil
	}
	return models.Float(sum / float64(pairs))
}

// computeDelta captures movement relative to the prior period. Indicator
// deltas are present only when both periods had a defined value.
func computeDelta(current, prior models.PeriodMetrics) *models.MetricsDelta {
	d := &models.MetricsDelta{
		TotalCommits:    current.TotalCommits - prior.TotalCommits,
		TotalChurn:      current.TotalChurn - prior.TotalChurn,
		DeployFrequency: current.DeployFrequency - prior.DeployFrequency,
	}
	if current.LeadTimeHours != nil && prior.LeadTimeHours != nil {
		d.LeadTimeHours = models.Float(*current.LeadTimeHours - *prior.LeadTimeHours)
	}
	if current.ChangeFailureRate != nil && prior.ChangeFailureRate != nil {
		d.ChangeFailureRate = models.Float(*current.ChangeFailureRate - *prior.ChangeFailureRate)
	}
	return d
}
