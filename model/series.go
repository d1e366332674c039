package model

import "fmt"

// reconcileTolerance is the absolute-dollar tolerance used when comparing
// two CashFlowSeries for equality in property tests and cross-checks.
const reconcileTolerance = 0.01

// CashFlowSeries is a dense, timeline-keyed vector of signed USD amounts.
// It carries the Timeline its values are keyed to; Add, Sub and EqualWithin
// align series over different timelines before combining them.
type CashFlowSeries struct {
	Timeline Timeline
	Values   []float64
}

// NewSeries builds a zero-filled series over the given timeline.
func NewSeries(tl Timeline) *CashFlowSeries {
	return &CashFlowSeries{Timeline: tl, Values: make([]float64, tl.Length())}
}

// NewSeriesFromPoints builds a series by aligning sparse (month, amount)
// points onto the timeline, per Timeline.Align's zero-fill/sum-collision
// rules.
func NewSeriesFromPoints(tl Timeline, points map[YearMonth]float64) *CashFlowSeries {
	return &CashFlowSeries{Timeline: tl, Values: tl.Align(points)}
}

// At returns the value at month ym, or 0 if ym is outside the series'
// timeline.
func (s *CashFlowSeries) At(ym YearMonth) float64 {
	idx, ok := s.Timeline.IndexOf(ym)
	if !ok {
		return 0
	}
	return s.Values[idx]
}

// Set assigns the value at month ym. It is a no-op if ym falls outside the
// series' timeline.
func (s *CashFlowSeries) Set(ym YearMonth, v float64) {
	if idx, ok := s.Timeline.IndexOf(ym); ok {
		s.Values[idx] = v
	}
}

// AddAt accumulates v into the value at month ym.
func (s *CashFlowSeries) AddAt(ym YearMonth, v float64) {
	if idx, ok := s.Timeline.IndexOf(ym); ok {
		s.Values[idx] += v
	}
}

// Sum totals every value in the series.
func (s *CashFlowSeries) Sum() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// align returns both operands as equal-length slices over the widest of
// the two timelines' span, padding with zero outside each series' own
// domain. Used internally by arithmetic so mismatched-length series never
// panic.
func align(a, b *CashFlowSeries) (Timeline, []float64, []float64) {
	tl := widerTimeline(a.Timeline, b.Timeline)
	return tl, resample(a, tl), resample(b, tl)
}

func widerTimeline(a, b Timeline) Timeline {
	start := a.Start()
	if b.Start().Before(start) {
		start = b.Start()
	}
	end := a.End()
	if end.Before(b.End()) {
		end = b.End()
	}
	length := diffMonths(start, end) + 1
	tl, _ := NewTimeline(start, length)
	return tl
}

func resample(s *CashFlowSeries, tl Timeline) []float64 {
	out := make([]float64, tl.Length())
	for i, ym := range s.Timeline.Months() {
		if idx, ok := tl.IndexOf(ym); ok {
			out[idx] += s.Values[i]
		}
	}
	return out
}

// Add returns the element-wise sum of s and other, aligned onto their
// combined timeline.
func (s *CashFlowSeries) Add(other *CashFlowSeries) *CashFlowSeries {
	tl, av, bv := align(s, other)
	out := make([]float64, tl.Length())
	for i := range out {
		out[i] = av[i] + bv[i]
	}
	return &CashFlowSeries{Timeline: tl, Values: out}
}

// Sub returns the element-wise difference s - other, aligned onto their
// combined timeline.
func (s *CashFlowSeries) Sub(other *CashFlowSeries) *CashFlowSeries {
	tl, av, bv := align(s, other)
	out := make([]float64, tl.Length())
	for i := range out {
		out[i] = av[i] - bv[i]
	}
	return &CashFlowSeries{Timeline: tl, Values: out}
}

// Negate returns a new series with every value sign-flipped. This is the
// deal-perspective <-> investor-perspective conversion used throughout the
// presentation layer (spec.md sign convention, §3.7).
func (s *CashFlowSeries) Negate() *CashFlowSeries {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = -v
	}
	return &CashFlowSeries{Timeline: s.Timeline, Values: out}
}

// Scale returns a new series with every value multiplied by k.
func (s *CashFlowSeries) Scale(k float64) *CashFlowSeries {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v * k
	}
	return &CashFlowSeries{Timeline: s.Timeline, Values: out}
}

// EqualWithin reports whether s and other are equal month-by-month within
// the given absolute tolerance, after aligning to their combined timeline.
func (s *CashFlowSeries) EqualWithin(other *CashFlowSeries, tolerance float64) bool {
	_, av, bv := align(s, other)
	for i := range av {
		if diff := av[i] - bv[i]; diff > tolerance || diff < -tolerance {
			return false
		}
	}
	return true
}

// Equal reports month-by-month equality within the standard $0.01
// reconciliation tolerance (spec.md §3.2).
func (s *CashFlowSeries) Equal(other *CashFlowSeries) bool {
	return s.EqualWithin(other, reconcileTolerance)
}

func (s *CashFlowSeries) String() string {
	return fmt.Sprintf("CashFlowSeries{months=%d, sum=%.2f}", len(s.Values), s.Sum())
}
