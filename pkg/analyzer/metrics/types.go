package metrics

import "github.com/avelira/devpulse/pkg/models"

// Analysis is the metrics engine output for one period: the per-author
// breakdown plus the period-level aggregates.
type Analysis struct {
	Period  models.Period                 `json:"period"`
	Authors map[string]models.AuthorStats `json:"authors"`
	Metrics models.PeriodMetrics          `json:"metrics"`
}
