package model

import (
	"fmt"
	"time"
)

// YearMonth is a calendar month with no day-of-month component. It always
// normalizes to the 1st so two YearMonths with the same Year/Month compare
// equal regardless of how they were constructed.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth builds a YearMonth from a time.Time, discarding the day.
func NewYearMonth(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Time returns the 1st-of-month UTC instant for this YearMonth.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the YearMonth n months after ym (n may be negative).
func (ym YearMonth) AddMonths(n int) YearMonth {
	return NewYearMonth(ym.Time().AddDate(0, n, 0))
}

// Before reports whether ym chronologically precedes other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Time().Before(other.Time())
}

// String renders the YearMonth as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Timeline represents the closed interval of consecutive calendar months
// [start, start+length-1] over which a deal is analyzed.
type Timeline struct {
	start  YearMonth
	length int
}

// NewTimeline constructs a Timeline. length must be >= 1.
func NewTimeline(start YearMonth, length int) (Timeline, error) {
	if length < 1 {
		return Timeline{}, fmt.Errorf("timeline length must be >= 1, got %d", length)
	}
	return Timeline{start: start, length: length}, nil
}

// Start returns the first month of the timeline.
func (t Timeline) Start() YearMonth { return t.start }

// Length returns the number of months in the timeline.
func (t Timeline) Length() int { return t.length }

// End returns the last (inclusive) month of the timeline.
func (t Timeline) End() YearMonth { return t.start.AddMonths(t.length - 1) }

// Months returns every month in the timeline, strictly increasing by one.
func (t Timeline) Months() []YearMonth {
	months := make([]YearMonth, t.length)
	for i := range months {
		months[i] = t.start.AddMonths(i)
	}
	return months
}

// IndexOf returns the zero-based offset of ym within the timeline, or
// (-1, false) if ym falls outside [start, end].
func (t Timeline) IndexOf(ym YearMonth) (int, bool) {
	if ym.Before(t.start) || t.End().Before(ym) {
		return -1, false
	}
	months := diffMonths(t.start, ym)
	return months, true
}

// Contains reports whether ym falls within the timeline.
func (t Timeline) Contains(ym YearMonth) bool {
	_, ok := t.IndexOf(ym)
	return ok
}

func diffMonths(a, b YearMonth) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// Align resamples a sparse (month, amount) set onto the timeline's dense
// index space. Months outside the timeline's domain are dropped; months
// shared by multiple entries are summed.
func (t Timeline) Align(points map[YearMonth]float64) []float64 {
	out := make([]float64, t.length)
	for ym, amount := range points {
		if idx, ok := t.IndexOf(ym); ok {
			out[idx] += amount
		}
	}
	return out
}
