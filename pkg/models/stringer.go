package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// CommitKind
func (c CommitKind) String() string { return string(c) }

// CIStatus
func (c CIStatus) String() string { return string(c) }

// Granularity
func (g Granularity) String() string { return string(g) }

// ForecastSeries
func (f ForecastSeries) String() string { return string(f) }

// Direction
func (d Direction) String() string { return string(d) }

// Confidence
func (c Confidence) String() string { return string(c) }

// RiskCheck
func (r RiskCheck) String() string { return string(r) }
