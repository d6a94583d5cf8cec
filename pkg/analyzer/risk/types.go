package risk

import "github.com/avelira/devpulse/pkg/models"

// Analysis is the risk detector output for one period.
type Analysis struct {
	Period  models.Period      `json:"period"`
	Summary models.RiskSummary `json:"summary"`
	// RiskyByAuthor counts churn-spike flagged commits per author, used to
	// backfill AuthorStats.
	RiskyByAuthor map[string]int `json:"risky_by_author,omitempty"`
	// EffectiveChurnThreshold is the threshold the churn-spike check
	// applied: the lower of the fixed threshold and the mean+sigma rule
	// when the latter was in play.
	EffectiveChurnThreshold float64 `json:"effective_churn_threshold"`
}
