package irrcalc_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/advisorly/review-engine-backend/internal/irrcalc"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestRateOfReturn tests the annualised rate solver against known flows.
//
// WHY: Every figure in a generated report eventually rests on this solver.
// These cases pin the sign conventions (contributions negative, terminal
// value positive) and the behaviour on degenerate input.
func TestRateOfReturn(t *testing.T) {
	t.Run("break-even flows yield zero", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -1000},
			{Date: date(2024, time.January, 1), Amount: 1000},
		}

		rate, err := irrcalc.RateOfReturn(flows)
		if err != nil {
			t.Fatalf("RateOfReturn() returned unexpected error: %v", err)
		}
		if math.Abs(rate) > 1e-9 {
			t.Errorf("Expected zero rate for break-even flows, got %v", rate)
		}
	})

	t.Run("doubling over one year is roughly 100 percent", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -1000},
			{Date: date(2024, time.January, 1), Amount: 2000},
		}

		rate, err := irrcalc.RateOfReturn(flows)
		if err != nil {
			t.Fatalf("RateOfReturn() returned unexpected error: %v", err)
		}
		if math.Abs(rate-1.0) > 0.01 {
			t.Errorf("Expected rate near 1.0, got %v", rate)
		}
	})

	t.Run("halving over one year is roughly minus 50 percent", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -1000},
			{Date: date(2024, time.January, 1), Amount: 500},
		}

		rate, err := irrcalc.RateOfReturn(flows)
		if err != nil {
			t.Fatalf("RateOfReturn() returned unexpected error: %v", err)
		}
		if math.Abs(rate+0.5) > 0.01 {
			t.Errorf("Expected rate near -0.5, got %v", rate)
		}
	})

	t.Run("late contributions raise the annualised rate", func(t *testing.T) {
		// Same terminal value as the doubling case, but half the money
		// arrived only six months in, so the annualised rate must exceed 1.
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -500},
			{Date: date(2023, time.July, 1), Amount: -500},
			{Date: date(2024, time.January, 1), Amount: 2000},
		}

		rate, err := irrcalc.RateOfReturn(flows)
		if err != nil {
			t.Fatalf("RateOfReturn() returned unexpected error: %v", err)
		}
		if rate <= 1.0 {
			t.Errorf("Expected rate above 1.0 for late contributions, got %v", rate)
		}
	})

	t.Run("fewer than two flows is insufficient", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -1000},
		}

		if _, err := irrcalc.RateOfReturn(flows); !errors.Is(err, irrcalc.ErrInsufficientCashFlows) {
			t.Errorf("Expected ErrInsufficientCashFlows, got %v", err)
		}
	})

	t.Run("same-day flows collapse to one period and are insufficient", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: -1000},
			{Date: date(2023, time.January, 1), Amount: 1000},
		}

		if _, err := irrcalc.RateOfReturn(flows); !errors.Is(err, irrcalc.ErrInsufficientCashFlows) {
			t.Errorf("Expected ErrInsufficientCashFlows, got %v", err)
		}
	})

	t.Run("non-positive terminal value is insufficient", func(t *testing.T) {
		flows := []irrcalc.CashFlow{
			{Date: date(2023, time.January, 1), Amount: 1000},
			{Date: date(2024, time.January, 1), Amount: -1000},
		}

		if _, err := irrcalc.RateOfReturn(flows); !errors.Is(err, irrcalc.ErrInsufficientCashFlows) {
			t.Errorf("Expected ErrInsufficientCashFlows, got %v", err)
		}
	})
}
