// Package forecast projects the next period's value for a metric series
// using Holt (level plus trend) exponential smoothing.
package forecast

import (
	"math"

	"github.com/avelira/devpulse/pkg/models"
)

// Defaults for the forecaster.
const (
	DefaultWindow        = 12
	DefaultMinHistory    = 2
	DefaultDirectionBand = 0.05
)

// insufficientHistory is the reason recorded on naive fallback results.
const insufficientHistory = "insufficient history"

// Analyzer fits a smoothing model over a trailing series of period values
// and projects one step ahead. Smoothing parameters are re-estimated on
// every call; no state survives between runs.
type Analyzer struct {
	window     int
	minHistory int
	band       float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWindow caps how many trailing observations are used for the fit.
func WithWindow(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithMinHistory sets the observation count below which the forecaster
// repeats the last value instead of fitting. Values below 2 are accepted
// but the fallback still triggers under 2 observations.
func WithMinHistory(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minHistory = n
		}
	}
}

// WithDirectionBand sets the flat band as a fraction of the last observed
// value.
func WithDirectionBand(band float64) Option {
	return func(a *Analyzer) {
		if band > 0 {
			a.band = band
		}
	}
}

// New creates a new forecaster.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		window:     DefaultWindow,
		minHistory: DefaultMinHistory,
		band:       DefaultDirectionBand,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Forecast projects the target period's value from the history series,
// ordered oldest first. It never fails: below the minimum history length
// the result repeats the last value with flat direction and low confidence,
// and an empty series forecasts zero the same way.
func (a *Analyzer) Forecast(series models.ForecastSeries, history []float64, target models.Period) models.ForecastResult {
	if len(history) > a.window {
		history = history[len(history)-a.window:]
	}

	result := models.ForecastResult{
		Series:       series,
		Period:       target,
		Observations: len(history),
		Confidence:   models.ConfidenceForHistory(len(history)),
	}

	// A fit on fewer than 2 points is undefined, so the fallback floor
	// holds at 2 regardless of the configured minimum.
	if len(history) < max(a.minHistory, 2) {
		var last float64
		if len(history) > 0 {
			last = history[len(history)-1]
		}
		result.Value = last
		result.Direction = models.DirectionFlat
		result.Confidence = models.ConfidenceLow
		result.Reason = insufficientHistory
		return result
	}

	_, _, predicted := fitHolt(history)
	if predicted < 0 {
		predicted = 0
	}
	result.Value = predicted
	result.Direction = a.direction(predicted, history[len(history)-1])
	return result
}

// direction compares the forecast against the last observed value with a
// relative band on either side.
func (a *Analyzer) direction(forecast, last float64) models.Direction {
	if last == 0 {
		if forecast > 0 {
			return models.DirectionIncreasing
		}
		return models.DirectionFlat
	}
	switch {
	case forecast > last*(1+a.band):
		return models.DirectionIncreasing
	case forecast < last*(1-a.band):
		return models.DirectionDecreasing
	default:
		return models.DirectionFlat
	}
}

// fitHolt estimates Holt smoothing parameters by grid search over
// one-step-ahead squared error and returns the chosen alpha, beta, and the
// one-step-ahead forecast. The series must have at least 2 points. Series
// lengths are small, so the search is sequential and deterministic.
func fitHolt(series []float64) (alpha, beta, forecast float64) {
	bestSSE := math.Inf(1)
	for a := 0.05; a < 1.0; a += 0.05 {
		for b := 0.05; b < 1.0; b += 0.05 {
			sse, f := holtPass(series, a, b)
			if sse < bestSSE {
				bestSSE = sse
				alpha, beta, forecast = a, b, f
			}
		}
	}
	return alpha, beta, forecast
}

// holtPass runs one smoothing pass, returning the one-step-ahead SSE over
// the series and the forecast for the next step.
func holtPass(series []float64, alpha, beta float64) (sse, forecast float64) {
	level := series[0]
	trend := series[1] - series[0]

	for t := 1; t < len(series); t++ {
		predicted := level + trend
		err := series[t] - predicted
		sse += err * err

		prevLevel := level
		level = alpha*series[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	return sse, level + trend
}
