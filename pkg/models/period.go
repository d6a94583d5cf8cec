package models

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the fixed bucket size a Period covers.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity converts a string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "d":
		return Daily, nil
	case "weekly", "week", "w", "":
		return Weekly, nil
	case "monthly", "month", "m":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want daily, weekly, or monthly)", s)
	}
}

// Period is a half-open time interval [Start, End) with a declared
// granularity. Every metric and forecast is scoped to exactly one Period.
type Period struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

// PeriodContaining returns the period of the given granularity that contains
// t. Weekly periods start on Monday; all boundaries are midnight in t's
// location.
func PeriodContaining(t time.Time, g Granularity) Period {
	var start time.Time
	switch g {
	case Daily:
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case Monthly:
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		start = day.AddDate(0, 0, -offset)
		g = Weekly
	}
	p := Period{Start: start, Granularity: g}
	p.End = p.advance(start, 1)
	return p
}

// advance moves a boundary forward by n granularity steps.
func (p Period) advance(t time.Time, n int) time.Time {
	switch p.Granularity {
	case Daily:
		return t.AddDate(0, 0, n)
	case Monthly:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, 7*n)
	}
}

// Contains reports whether t falls inside the half-open interval [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Previous returns the immediately preceding period of the same granularity.
func (p Period) Previous() Period {
	return Period{
		Start:       p.advance(p.Start, -1),
		End:         p.Start,
		Granularity: p.Granularity,
	}
}

// Next returns the immediately following period of the same granularity.
func (p Period) Next() Period {
	return Period{
		Start:       p.End,
		End:         p.advance(p.End, 1),
		Granularity: p.Granularity,
	}
}

// Label renders the period as a short human-readable range.
func (p Period) Label() string {
	last := p.End.AddDate(0, 0, -1)
	if p.Granularity == Daily {
		return p.Start.Format("2006-01-02")
	}
	return fmt.Sprintf("%s to %s", p.Start.Format("2006-01-02"), last.Format("2006-01-02"))
}
