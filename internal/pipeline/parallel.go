package pipeline

import (
	"context"
	"errors"

	"github.com/avelira/devpulse/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// RunAll executes one run per period concurrently. Each run owns its own
// context and state machine, so runs share no mutable state; the history
// source must tolerate concurrent read-only lookups. Reports come back in
// period order. Failed runs leave a nil slot and their errors are joined.
func RunAll(ctx context.Context, p *Pipeline, periods []models.Period, source EventSource) ([]*models.Report, error) {
	if len(periods) == 0 {
		return nil, nil
	}

	reports := make([]*models.Report, len(periods))
	errs := make([]error, len(periods))

	wp := pool.New().WithMaxGoroutines(len(periods))
	for i, period := range periods {
		wp.Go(func() {
			reports[i], errs[i] = p.Run(ctx, period, source)
		})
	}
	wp.Wait()

	return reports, errors.Join(errs...)
}
