package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/model"
)

// AggregationService converts raw activity records into per-fund and
// per-product totals, separating active from inactive holdings and
// synthesizing the virtual "Previous Funds" aggregate.
type AggregationService struct {
	irrService *IRRService
	logger     zerolog.Logger
}

// NewAggregationService creates an AggregationService.
func NewAggregationService(irrService *IRRService, logger zerolog.Logger) *AggregationService {
	return &AggregationService{
		irrService: irrService,
		logger:     logger.With().Str("component", "aggregation").Logger(),
	}
}

// AggregateFund classifies one fund's ledger into bucket totals and
// resolves its current valuation against the cut-off.
//
// The valuation is the record dated in exactly the cut-off month when one
// exists, otherwise the most recent record at or before the cut-off. An
// active fund with neither is a missing-valuation condition (missing=true);
// an inactive fund without data legitimately values at zero.
func (s *AggregationService) AggregateFund(fund model.PortfolioFund, activities []model.ActivityRecord, valuations []model.Valuation, cutoff *time.Time) (summary model.FundSummary, missing bool) {
	summary = model.FundSummary{
		PortfolioFundID: fund.ID,
		FundID:          fund.FundID,
		FundName:        fund.FundName,
		Status:          fund.Status,
		RiskFactor:      fund.RiskFactor,
	}

	for _, rec := range activities {
		accumulate(&summary.Totals, Classify(rec), rec.Amount)

		if summary.StartDate == nil || rec.Date.Before(*summary.StartDate) {
			date := rec.Date
			summary.StartDate = &date
		}
	}
	summary.Totals.ComputeNetFlow()

	valuation, found := valuationAt(valuations, cutoff)
	switch {
	case found:
		summary.CurrentValuation = valuation
	case fund.IsActive():
		return summary, true
	default:
		summary.CurrentValuation = 0
	}

	return summary, false
}

// AggregateProduct folds fund summaries into one product summary. Inactive
// funds collapse into the synthetic "Previous Funds" entry; product totals
// are the exact sum over the resulting fund list.
func (s *AggregationService) AggregateProduct(ctx context.Context, product model.Product, fundSummaries []model.FundSummary, cutoff *time.Time) model.ProductSummary {
	var active, inactive []model.FundSummary
	for _, f := range fundSummaries {
		if f.Status == model.FundStatusActive {
			active = append(active, f)
		} else {
			inactive = append(inactive, f)
		}
	}

	funds := active
	if len(inactive) > 0 {
		funds = append(funds, s.mergeInactive(ctx, product, inactive, cutoff))
	}

	summary := model.ProductSummary{
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductType: product.Type,
		Provider:    product.Provider,
		PlanNumber:  product.PlanNumber,
		Status:      product.Status,
		Funds:       funds,
	}

	for _, f := range funds {
		summary.Totals.Add(f.Totals)
		summary.CurrentValuation += f.CurrentValuation

		if f.StartDate != nil && (summary.StartDate == nil || f.StartDate.Before(*summary.StartDate)) {
			date := *f.StartDate
			summary.StartDate = &date
		}
	}

	summary.WeightedRisk = ValuationWeightedRisk(funds)

	summary.IRR = s.irrService.GetIRR(ctx, IRRScope{
		PortfolioID:      product.PortfolioID,
		PortfolioFundIDs: fundIDsOf(fundSummaries),
		WholePortfolio:   true,
	}, cutoff)

	return summary
}

// mergeInactive folds all not-active funds of one product into the virtual
// "Previous Funds" summary: bucket-wise sums, an IRR computed over just
// those funds without persisting, and a risk factor from the fallback chain.
// The original summaries are embedded for drill-down rendering.
func (s *AggregationService) mergeInactive(ctx context.Context, product model.Product, inactive []model.FundSummary, cutoff *time.Time) model.FundSummary {
	merged := model.FundSummary{
		FundName:    model.PreviousFundsName,
		IsPrevious:  true,
		MergedCount: len(inactive),
		Merged:      inactive,
	}

	for _, f := range inactive {
		merged.Totals.Add(f.Totals)
		merged.CurrentValuation += f.CurrentValuation

		if f.StartDate != nil && (merged.StartDate == nil || f.StartDate.Before(*merged.StartDate)) {
			date := *f.StartDate
			merged.StartDate = &date
		}
	}

	// A subset of the portfolio's funds is a partial scope: the computed
	// IRR must never replace the stored whole-portfolio value.
	merged.IRR = s.irrService.GetIRR(ctx, IRRScope{
		PortfolioID:      product.PortfolioID,
		PortfolioFundIDs: fundIDsOf(inactive),
		WholePortfolio:   false,
	}, cutoff)

	merged.RiskFactor = WeightedRiskFallback(inactive)

	return merged
}

// valuationAt picks the valuation for a cut-off: the record in exactly the
// cut-off month when present, otherwise the most recent record dated at or
// before the cut-off. With no cut-off, the latest record wins. Valuations
// arrive sorted oldest first.
func valuationAt(valuations []model.Valuation, cutoff *time.Time) (float64, bool) {
	if len(valuations) == 0 {
		return 0, false
	}

	if cutoff == nil {
		return valuations[len(valuations)-1].Value, true
	}

	cutoffMonth := cutoff.Format("2006-01")
	found := false
	value := 0.0

	for _, v := range valuations {
		if v.Month == cutoffMonth {
			return v.Value, true
		}
		if v.Date.After(*cutoff) {
			break
		}
		value = v.Value
		found = true
	}

	return value, found
}

func fundIDsOf(funds []model.FundSummary) []string {
	ids := make([]string, 0, len(funds))
	for _, f := range funds {
		ids = append(ids, f.PortfolioFundID)
	}
	return ids
}
