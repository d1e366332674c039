// Package finmath implements the numeric primitives DealResults depends
// on. IRR is hand-rolled rather than pulled from a library: spec.md §9
// treats it as a first-class primitive with explicit convergence and
// no-real-root behavior, which a generic financial library does not
// expose the way this engine needs (see DESIGN.md).
package finmath

import (
	"math"

	"performa/internal/apperrors"
)

const (
	irrMaxIterations = 100
	irrTolerance     = 1e-9
)

// MonthlyIRR solves for the monthly rate r that zeros
// sum(cashflows[i] / (1+r)^i) using Newton-Raphson, falling back to
// bisection over a bracketed range when Newton's method fails to converge
// or walks outside a sane domain. Returns 0 with ok=false when cashflows
// never contains a positive flow (spec.md §4.10: "reported as zero when no
// positive flow exists").
func MonthlyIRR(cashflows []float64) (rate float64, ok bool, err error) {
	if !hasPositiveFlow(cashflows) {
		return 0, false, nil
	}

	if r, converged := newtonRaphson(cashflows); converged {
		return r, true, nil
	}

	if r, found := bisectionBracket(cashflows); found {
		return r, true, nil
	}

	return 0, false, apperrors.New(apperrors.KindConvergence,
		"IRR failed to converge within 100 iterations / 1e-9 tolerance")
}

// AnnualizeIRR converts a monthly rate to an annual rate per the run's
// chosen basis. "compounded" is the standard (1+r)^12 - 1; "simple" is a
// flat r*12, used only where the analysis settings request it for
// comparability with legacy reporting.
func AnnualizeIRR(monthly float64, compounded bool) float64 {
	if compounded {
		return math.Pow(1+monthly, 12) - 1
	}
	return monthly * 12
}

func hasPositiveFlow(cashflows []float64) bool {
	for _, v := range cashflows {
		if v > 0 {
			return true
		}
	}
	return false
}

func npv(rate float64, cashflows []float64) float64 {
	total := 0.0
	for i, cf := range cashflows {
		total += cf / math.Pow(1+rate, float64(i))
	}
	return total
}

func npvDerivative(rate float64, cashflows []float64) float64 {
	total := 0.0
	for i, cf := range cashflows {
		if i == 0 {
			continue
		}
		n := float64(i)
		total += -n * cf / math.Pow(1+rate, n+1)
	}
	return total
}

func newtonRaphson(cashflows []float64) (float64, bool) {
	rate := 0.1
	for iter := 0; iter < irrMaxIterations; iter++ {
		value := npv(rate, cashflows)
		if math.Abs(value) < irrTolerance {
			return rate, true
		}
		deriv := npvDerivative(rate, cashflows)
		if deriv == 0 || math.IsNaN(deriv) {
			return 0, false
		}
		next := rate - value/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, false
		}
		rate = next
	}
	return 0, false
}

// bisectionBracket searches a wide range of candidate rates for a sign
// change in NPV, then bisects down to tolerance. Used when Newton-Raphson
// diverges, which happens for some highly irregular cash flow shapes.
func bisectionBracket(cashflows []float64) (float64, bool) {
	const (
		lowStart = -0.99
		highEnd  = 10.0
		step     = 0.05
	)

	prevRate := lowStart
	prevValue := npv(lowStart, cashflows)

	for r := lowStart + step; r <= highEnd; r += step {
		value := npv(r, cashflows)
		if prevValue == 0 {
			return prevRate, true
		}
		if (prevValue < 0) != (value < 0) {
			return bisect(prevRate, r, cashflows), true
		}
		prevRate, prevValue = r, value
	}
	return 0, false
}

func bisect(low, high float64, cashflows []float64) float64 {
	lowValue := npv(low, cashflows)
	for iter := 0; iter < irrMaxIterations; iter++ {
		mid := (low + high) / 2
		midValue := npv(mid, cashflows)
		if math.Abs(midValue) < irrTolerance {
			return mid
		}
		if (midValue < 0) == (lowValue < 0) {
			low = mid
			lowValue = midValue
		} else {
			high = mid
		}
	}
	return (low + high) / 2
}
