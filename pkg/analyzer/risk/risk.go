// Package risk scans a period's events for churn spikes, off-hours
// activity, and outlier authors.
package risk

import (
	"context"
	"fmt"
	"sort"

	"github.com/avelira/devpulse/pkg/analyzer"
	"github.com/avelira/devpulse/pkg/models"
	"github.com/avelira/devpulse/pkg/stats"
)

// Defaults for the threshold-driven checks.
const (
	DefaultRiskyChurn      = 100
	DefaultSpikeSigma      = 2.0
	DefaultSpikeMinCommits = 5
	DefaultOutlierSigma    = 1.0

	// minAuthorsForOutlier suppresses the outlier-author check when the
	// author stddev is meaningless.
	minAuthorsForOutlier = 2
)

// Analyzer flags risky commits and outlier authors.
type Analyzer struct {
	riskyChurn      int
	spikeSigma      float64
	spikeMinCommits int
	outlierSigma    float64
}

// Compile-time check that Analyzer implements EventAnalyzer.
var _ analyzer.EventAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRiskyChurn sets the fixed churn threshold for the spike check.
func WithRiskyChurn(lines int) Option {
	return func(a *Analyzer) {
		if lines > 0 {
			a.riskyChurn = lines
		}
	}
}

// WithSpikeSigma sets the stddev multiplier for the statistical spike rule.
func WithSpikeSigma(sigma float64) Option {
	return func(a *Analyzer) {
		if sigma > 0 {
			a.spikeSigma = sigma
		}
	}
}

// WithSpikeMinCommits sets the commit count below which the statistical
// spike rule is skipped.
func WithSpikeMinCommits(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.spikeMinCommits = n
		}
	}
}

// WithOutlierSigma sets the stddev multiplier for the outlier-author check.
func WithOutlierSigma(sigma float64) Option {
	return func(a *Analyzer) {
		if sigma > 0 {
			a.outlierSigma = sigma
		}
	}
}

// New creates a new risk analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		riskyChurn:      DefaultRiskyChurn,
		spikeSigma:      DefaultSpikeSigma,
		spikeMinCommits: DefaultSpikeMinCommits,
		outlierSigma:    DefaultOutlierSigma,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the three checks over the period's commits. With zero
// commits both percentages are 0, not null: an empty period means no risk
// observed. Pull requests are accepted for interface symmetry but unused.
func (a *Analyzer) Analyze(ctx context.Context, period models.Period, commits []models.CommitEvent, prs []models.PullRequestEvent) (*Analysis, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	analysis := &Analysis{
		Period:        period,
		RiskyByAuthor: make(map[string]int),
	}

	threshold := a.churnThreshold(commits)
	analysis.EffectiveChurnThreshold = threshold

	var risky, afterHours int
	for _, c := range commits {
		if float64(c.Churn()) > threshold {
			risky++
			analysis.RiskyByAuthor[c.Author]++
			analysis.Summary.Flags = append(analysis.Summary.Flags, models.RiskFlag{
				Check:  models.CheckChurnSpike,
				Commit: c.Hash,
				Author: c.Author,
				Detail: fmt.Sprintf("churn %d exceeds threshold %.0f", c.Churn(), threshold),
			})
		}
		if c.AfterHours {
			afterHours++
			analysis.Summary.Flags = append(analysis.Summary.Flags, models.RiskFlag{
				Check:  models.CheckAfterHours,
				Commit: c.Hash,
				Author: c.Author,
				Detail: c.Timestamp.Format("15:04"),
			})
		}
	}

	if n := len(commits); n > 0 {
		analysis.Summary.RiskyCommitPct = float64(risky) / float64(n) * 100
		analysis.Summary.AfterHoursPct = float64(afterHours) / float64(n) * 100
	}

	for _, author := range a.outlierAuthors(commits) {
		analysis.Summary.Flags = append(analysis.Summary.Flags, models.RiskFlag{
			Check:  models.CheckOutlierAuthor,
			Author: author,
		})
	}

	return analysis, nil
}

// Close releases any resources held by the analyzer.
func (a *Analyzer) Close() {
}

// churnThreshold returns the effective spike threshold: the fixed value,
// lowered to mean+sigma*stddev when the period has enough commits and the
// statistical bound is the stricter of the two.
func (a *Analyzer) churnThreshold(commits []models.CommitEvent) float64 {
	threshold := float64(a.riskyChurn)
	if len(commits) < a.spikeMinCommits {
		return threshold
	}

	churns := make([]float64, len(commits))
	for i, c := range commits {
		churns[i] = float64(c.Churn())
	}
	statistical := stats.Mean(churns) + a.spikeSigma*stats.StdDev(churns)
	if statistical < threshold {
		threshold = statistical
	}
	return threshold
}

// outlierAuthors returns authors whose period churn exceeds one (by
// default) standard deviation above the author-churn mean. Periods with
// fewer than 2 contributing authors never produce outlier flags.
func (a *Analyzer) outlierAuthors(commits []models.CommitEvent) []string {
	churnByAuthor := make(map[string]float64)
	for _, c := range commits {
		churnByAuthor[c.Author] += float64(c.Churn())
	}
	if len(churnByAuthor) < minAuthorsForOutlier {
		return nil
	}

	churns := make([]float64, 0, len(churnByAuthor))
	for _, v := range churnByAuthor {
		churns = append(churns, v)
	}
	cutoff := stats.Mean(churns) + a.outlierSigma*stats.StdDev(churns)

	var outliers []string
	for author, churn := range churnByAuthor {
		if churn > cutoff {
			outliers = append(outliers, author)
		}
	}
	sort.Strings(outliers)
	return outliers
}
