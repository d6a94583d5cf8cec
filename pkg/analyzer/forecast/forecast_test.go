package forecast

import (
	"testing"
	"time"

	"github.com/avelira/devpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = models.PeriodContaining(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), models.Weekly)

func TestForecast_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    float64
	}{
		{name: "empty series", history: nil, want: 0},
		{name: "single observation", history: []float64{42}, want: 42},
	}

	a := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := a.Forecast(models.SeriesChurn, tt.history, target)
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, models.DirectionFlat, r.Direction)
			assert.Equal(t, models.ConfidenceLow, r.Confidence)
			assert.Equal(t, "insufficient history", r.Reason)
			assert.Equal(t, len(tt.history), r.Observations)
		})
	}
}

// A configured minimum below 2 must not reach the smoothing fit, which
// needs at least 2 points.
func TestForecast_MinHistoryFloor(t *testing.T) {
	a := New(WithMinHistory(1))

	r := a.Forecast(models.SeriesChurn, []float64{42}, target)
	assert.Equal(t, 42.0, r.Value)
	assert.Equal(t, models.DirectionFlat, r.Direction)
	assert.Equal(t, models.ConfidenceLow, r.Confidence)
	assert.Equal(t, "insufficient history", r.Reason)

	r = a.Forecast(models.SeriesChurn, nil, target)
	assert.Equal(t, 0.0, r.Value)
	assert.Equal(t, "insufficient history", r.Reason)
}

func TestForecast_RisingSeries(t *testing.T) {
	a := New()
	r := a.Forecast(models.SeriesChurn, []float64{100, 120, 140, 160, 180, 200}, target)

	assert.Empty(t, r.Reason)
	assert.Equal(t, models.DirectionIncreasing, r.Direction)
	// A clean linear trend should project close to the next step.
	assert.InDelta(t, 220, r.Value, 10)
}

func TestForecast_FallingSeriesClampedAtZero(t *testing.T) {
	a := New()
	r := a.Forecast(models.SeriesLeadTime, []float64{50, 30, 10, 2, 1}, target)

	assert.GreaterOrEqual(t, r.Value, 0.0, "metric values cannot go negative")
	assert.Equal(t, models.DirectionDecreasing, r.Direction)
}

// Eight observations put the result in the high-confidence bucket.
func TestForecast_ConfidenceFromHistoryLength(t *testing.T) {
	a := New()
	r := a.Forecast(models.SeriesChurn, []float64{100, 120, 90, 130, 110, 140, 95, 150}, target)

	assert.Equal(t, models.ConfidenceHigh, r.Confidence)
	assert.Equal(t, 8, r.Observations)
	assert.Empty(t, r.Reason)
}

func TestForecast_WindowCapsObservations(t *testing.T) {
	history := make([]float64, 30)
	for i := range history {
		history[i] = float64(100 + i)
	}

	a := New(WithWindow(5))
	r := a.Forecast(models.SeriesChurn, history, target)

	assert.Equal(t, 5, r.Observations)
}

func TestDirection(t *testing.T) {
	a := New()
	tests := []struct {
		name     string
		forecast float64
		last     float64
		want     models.Direction
	}{
		{"well above band", 120, 100, models.DirectionIncreasing},
		{"well below band", 80, 100, models.DirectionDecreasing},
		{"inside upper band", 104, 100, models.DirectionFlat},
		{"inside lower band", 96, 100, models.DirectionFlat},
		{"exactly last", 100, 100, models.DirectionFlat},
		{"last zero forecast positive", 5, 0, models.DirectionIncreasing},
		{"last zero forecast zero", 0, 0, models.DirectionFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.direction(tt.forecast, tt.last))
		})
	}
}

func TestFitHolt_FlatSeries(t *testing.T) {
	_, _, f := fitHolt([]float64{50, 50, 50, 50, 50})
	assert.InDelta(t, 50, f, 1e-6)
}

func TestFitHolt_LinearSeries(t *testing.T) {
	alpha, beta, f := fitHolt([]float64{10, 20, 30, 40, 50})
	require.Greater(t, alpha, 0.0)
	require.Greater(t, beta, 0.0)
	assert.InDelta(t, 60, f, 1e-6)
}
