package forecast

import "gonum.org/v1/gonum/stat"

// TrendStats holds regression diagnostics for a history series, used for
// verbose reporting alongside the smoothing forecast.
type TrendStats struct {
	Slope       float64 `json:"slope"`       // value change per period
	Intercept   float64 `json:"intercept"`   // y-intercept
	RSquared    float64 `json:"r_squared"`   // goodness of fit (0-1)
	Correlation float64 `json:"correlation"` // Pearson correlation (-1 to 1)
}

// ComputeTrendStats calculates regression statistics over a series indexed
// by period. Returns zero values if fewer than 2 points are provided.
func ComputeTrendStats(series []float64) TrendStats {
	n := len(series)
	if n < 2 {
		return TrendStats{}
	}

	xs := make([]float64, n) // period index (0, 1, 2, ...)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, series, nil, false)
	rSquared := stat.RSquared(xs, series, nil, intercept, slope)
	correlation := stat.Correlation(xs, series, nil)

	return TrendStats{
		Slope:       slope,
		Intercept:   intercept,
		RSquared:    rSquared,
		Correlation: correlation,
	}
}
