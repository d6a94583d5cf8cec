// Package report assembles analyzer outputs into the immutable report
// handed to narration and delivery collaborators.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/avelira/devpulse/pkg/models"
)

// reconcileTolerance bounds the float drift allowed between the author
// sums and the period aggregates.
const reconcileTolerance = 1e-6

// Inputs bundles everything the assembler merges.
type Inputs struct {
	Period    models.Period
	Authors   map[string]models.AuthorStats
	Metrics   models.PeriodMetrics
	Risk      models.RiskSummary
	Forecasts []models.ForecastResult
	Skipped   int
	Now       time.Time
}

// ConsistencyError reports a failed reconciliation between author stats
// and period aggregates. It indicates a metrics engine bug, not bad input,
// and is fatal to the run.
type ConsistencyError struct {
	Field string
	Got   float64
	Want  float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("report inconsistency: author %s sum %.6f does not match period aggregate %.6f", e.Field, e.Got, e.Want)
}

// Assemble merges the analyzer outputs into one report. Its only
// computation is the reconciliation self-check: the per-author commit and
// churn sums must equal the period aggregates within tolerance.
func Assemble(in Inputs) (*models.Report, error) {
	var commits, churn float64
	for _, st := range in.Authors {
		commits += float64(st.Commits)
		churn += float64(st.TotalChurn())
	}

	if math.Abs(commits-float64(in.Metrics.TotalCommits)) > reconcileTolerance {
		return nil, &ConsistencyError{Field: "commits", Got: commits, Want: float64(in.Metrics.TotalCommits)}
	}
	if math.Abs(churn-float64(in.Metrics.TotalChurn)) > reconcileTolerance {
		return nil, &ConsistencyError{Field: "churn", Got: churn, Want: float64(in.Metrics.TotalChurn)}
	}

	return &models.Report{
		Period:        in.Period,
		Metrics:       in.Metrics,
		Authors:       in.Authors,
		Risk:          in.Risk,
		Forecasts:     in.Forecasts,
		SkippedEvents: in.Skipped,
		GeneratedAt:   in.Now,
	}, nil
}
