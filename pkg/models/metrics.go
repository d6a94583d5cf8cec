package models

// AuthorStats holds one author's contribution totals for a single period.
// Stats are derived per pipeline run and replaced wholesale, never mutated
// in place.
type AuthorStats struct {
	Author            string  `json:"author"`
	Commits           int     `json:"commits"`
	Additions         int     `json:"additions"`
	Deletions         int     `json:"deletions"`
	AvgChurn          float64 `json:"avg_churn"`
	RiskyCommits      int     `json:"risky_commits"`
	AfterHoursCommits int     `json:"after_hours_commits"`
}

// TotalChurn returns the author's total lines touched in the period.
func (a AuthorStats) TotalChurn() int {
	return a.Additions + a.Deletions
}

// PeriodMetrics holds aggregate period-level values, including the
// delivery-performance ("four keys") indicators.
//
// Nullable fields use pointers: LeadTimeHours is nil when the period has no
// merged pull requests, ChangeFailureRate is nil when no pull request was
// CI-evaluated, and MTTRHours is nil when no fix-tagged commit has a
// preceding non-fix commit from the same author. A zero-activity period
// produces zero totals and nil indicators, never an error.
type PeriodMetrics struct {
	Period       Period `json:"period"`
	TotalCommits int    `json:"total_commits"`
	TotalChurn   int    `json:"total_churn"`
	FilesTouched int    `json:"files_touched"`

	// LeadTimeHours is the mean hours from pull request creation to merge,
	// over merged pull requests only.
	LeadTimeHours *float64 `json:"lead_time_hours,omitempty"`
	// ReviewLatencyHours is the mean hours from pull request creation to
	// first review, over reviewed pull requests only.
	ReviewLatencyHours *float64 `json:"review_latency_hours,omitempty"`
	// DeployFrequency counts merged pull requests, a proxy for deployments.
	DeployFrequency int `json:"deploy_frequency"`
	// ChangeFailureRate is the percentage of CI-evaluated pull requests
	// whose CI outcome is failure.
	ChangeFailureRate *float64 `json:"change_failure_rate,omitempty"`
	// MTTRHours approximates mean time to recovery from the gap between a
	// fix-tagged commit and its nearest preceding non-fix commit by the
	// same author.
	MTTRHours *float64 `json:"mttr_hours,omitempty"`

	// Delta carries movement relative to the prior period when one was
	// supplied to the metrics engine.
	Delta *MetricsDelta `json:"delta,omitempty"`
}

// MetricsDelta is the change in headline values relative to the prior
// period. Nullable indicator deltas are present only when both periods had
// a defined value.
type MetricsDelta struct {
	TotalCommits      int      `json:"total_commits"`
	TotalChurn        int      `json:"total_churn"`
	DeployFrequency   int      `json:"deploy_frequency"`
	LeadTimeHours     *float64 `json:"lead_time_hours,omitempty"`
	ChangeFailureRate *float64 `json:"change_failure_rate,omitempty"`
}

// Float returns a pointer to v. Convenience for the nullable metric fields.
func Float(v float64) *float64 {
	return &v
}
