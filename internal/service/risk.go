package service

import (
	"math"

	"github.com/advisorly/review-engine-backend/internal/model"
)

// riskWeight is one rule of the weighting fallback chain.
type riskWeight func(model.FundSummary) float64

// riskFallbackChain is evaluated in order; the first rule with a positive
// total weight across funds with a defined risk factor wins.
var riskFallbackChain = []riskWeight{
	func(f model.FundSummary) float64 { return math.Abs(f.Totals.NetFlow) },
	func(f model.FundSummary) float64 {
		return math.Abs(f.Totals.Investment + f.Totals.RegularInvestment)
	},
	func(f model.FundSummary) float64 { return math.Abs(f.CurrentValuation) },
	func(f model.FundSummary) float64 { return 1 },
}

// WeightedRiskFallback computes a weighted-average risk factor across fund
// summaries using the fallback chain: |net flow|, then |total investment|,
// then |current valuation|, then equal weights. Funds without a risk factor
// never contribute weight. Returns nil when no fund has a defined risk.
func WeightedRiskFallback(funds []model.FundSummary) *float64 {
	for _, weight := range riskFallbackChain {
		if risk, ok := weightedRisk(funds, weight); ok {
			return &risk
		}
	}
	return nil
}

// ValuationWeightedRisk computes the product-level risk across active funds
// weighted by current valuation.
func ValuationWeightedRisk(funds []model.FundSummary) *float64 {
	var active []model.FundSummary
	for _, f := range funds {
		if f.Status == model.FundStatusActive && !f.IsPrevious {
			active = append(active, f)
		}
	}
	if risk, ok := weightedRisk(active, func(f model.FundSummary) float64 { return math.Abs(f.CurrentValuation) }); ok {
		return &risk
	}
	// Valuation-weighting can zero out (e.g. everything redeemed); fall
	// back through the standard chain.
	return WeightedRiskFallback(active)
}

func weightedRisk(funds []model.FundSummary, weight riskWeight) (float64, bool) {
	totalWeight := 0.0
	weightedSum := 0.0

	for _, f := range funds {
		if f.RiskFactor == nil {
			continue
		}
		w := weight(f)
		totalWeight += w
		weightedSum += w * (*f.RiskFactor)
	}

	if totalWeight <= 0 {
		return 0, false
	}
	return weightedSum / totalWeight, true
}
