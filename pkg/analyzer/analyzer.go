package analyzer

import (
	"context"

	"github.com/avelira/devpulse/pkg/models"
)

// EventAnalyzer is the interface that all period-scoped analyzers implement.
// Analyzers are pure over their inputs: the same events always produce the
// same result, and a period with zero events is a valid input, not an error.
type EventAnalyzer[T any] interface {
	// Analyze processes one period's harvested events and returns the
	// analysis result.
	Analyze(ctx context.Context, period models.Period, commits []models.CommitEvent, prs []models.PullRequestEvent) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
