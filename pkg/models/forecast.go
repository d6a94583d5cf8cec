package models

// ForecastSeries names a target metric series the forecaster can project.
type ForecastSeries string

const (
	SeriesChurn    ForecastSeries = "churn"
	SeriesLeadTime ForecastSeries = "lead_time"
)

// Direction qualifies a forecast relative to the last observed value.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionFlat       Direction = "flat"
)

// Confidence qualifies how much history backed a forecast.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceForHistory buckets a history length into a confidence level:
// fewer than 4 observed periods is low, 4-7 is medium, 8 or more is high.
func ConfidenceForHistory(n int) Confidence {
	switch {
	case n >= 8:
		return ConfidenceHigh
	case n >= 4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ForecastResult is a one-step-ahead projection for a single target series.
type ForecastResult struct {
	Series ForecastSeries `json:"series"`
	// Period is the period being forecast, i.e. the one following the last
	// observed period.
	Period       Period     `json:"period"`
	Value        float64    `json:"value"`
	Direction    Direction  `json:"direction"`
	Confidence   Confidence `json:"confidence"`
	Observations int        `json:"observations"`
	// Reason is set when the forecaster fell back to repeating the last
	// value instead of fitting the smoothing model.
	Reason string `json:"reason,omitempty"`
}
