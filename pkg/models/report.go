package models

import "time"

// RiskCheck names the detector that produced a RiskFlag.
type RiskCheck string

const (
	CheckChurnSpike    RiskCheck = "churn_spike"
	CheckAfterHours    RiskCheck = "after_hours"
	CheckOutlierAuthor RiskCheck = "outlier_author"
)

// RiskFlag marks a commit or author singled out by one risk check.
type RiskFlag struct {
	Check  RiskCheck `json:"check"`
	Commit string    `json:"commit,omitempty"`
	Author string    `json:"author"`
	Detail string    `json:"detail,omitempty"`
}

// RiskSummary aggregates the risk detector's findings for a period.
// The percentage fields are defined as 0 (not null) for a period with no
// commits: an empty period means no risk observed, unlike the
// zero-denominator change failure rate which is indeterminate.
type RiskSummary struct {
	Flags          []RiskFlag `json:"flags,omitempty"`
	RiskyCommitPct float64    `json:"risky_commit_pct"`
	AfterHoursPct  float64    `json:"after_hours_pct"`
}

// Report is the immutable artifact of one pipeline run. It is the sole
// structure handed to narration, chart, and delivery collaborators; raw
// events never leave the pipeline.
type Report struct {
	Period      Period                 `json:"period"`
	Metrics     PeriodMetrics          `json:"metrics"`
	Authors     map[string]AuthorStats `json:"authors"`
	Risk        RiskSummary            `json:"risk"`
	Forecasts   []ForecastResult       `json:"forecasts,omitempty"`
	// SkippedEvents counts harvested events dropped for malformed fields or
	// out-of-period timestamps.
	SkippedEvents int       `json:"skipped_events"`
	GeneratedAt   time.Time `json:"generated_at"`
}
