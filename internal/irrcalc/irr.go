// Package irrcalc computes internal rates of return over dated cash flows
// and implements the compute capability consumed by the IRR orchestrator.
package irrcalc

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrInsufficientCashFlows indicates the flows cannot anchor an IRR
// computation (no flows, or no sign change between flows and terminal value).
var ErrInsufficientCashFlows = errors.New("insufficient cash flows for IRR")

// CashFlow is one dated, signed amount. Contributions are negative
// (money paid in), withdrawals and the terminal valuation positive.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

type periodSum struct {
	period float64 // years since the first flow
	sum    float64
}

// RateOfReturn solves for the annualised rate at which the net present
// value of the flows is zero. Fixed-point iteration on the terminal flow;
// converges in a handful of iterations for realistic portfolios.
func RateOfReturn(flows []CashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrInsufficientCashFlows
	}

	items := periodSums(flows)
	if len(items) < 2 {
		return 0, ErrInsufficientCashFlows
	}

	last := items[len(items)-1]
	if last.sum <= 0 || last.period <= 0 {
		return 0, ErrInsufficientCashFlows
	}

	// result is the growth factor (1 + rate).
	result := 1.1
	for iteration := 0; iteration < 100; iteration++ {
		prev := result
		s := 0.0
		for i := 0; i < len(items)-1; i++ {
			s += items[i].sum / math.Pow(result, items[i].period)
		}
		if s >= 0 {
			return 0, ErrInsufficientCashFlows
		}
		result = math.Pow(-last.sum/s, 1/last.period)
		if math.IsNaN(result) || math.IsInf(result, 0) {
			return 0, ErrInsufficientCashFlows
		}
		if math.Abs(result-prev) < 0.0005 {
			break
		}
	}

	return result - 1, nil
}

// periodSums groups flows by whole days since the earliest flow and
// converts day offsets to year fractions, sorted oldest first.
func periodSums(flows []CashFlow) []periodSum {
	start := dateOnly(minDate(flows))
	m := make(map[int]float64)
	for _, f := range flows {
		days := int(dateOnly(f.Date).Sub(start).Hours() / 24)
		m[days] += f.Amount
	}

	result := make([]periodSum, 0, len(m))
	for days, sum := range m {
		result = append(result, periodSum{float64(days) / 365.25, sum})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].period < result[j].period
	})
	return result
}

func minDate(flows []CashFlow) time.Time {
	result := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(result) {
			result = f.Date
		}
	}
	return result
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
