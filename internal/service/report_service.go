package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
)

// ReportRequest is the input to one report generation run.
type ReportRequest struct {
	ClientGroupIDs     []string
	ProductIDs         []string
	ExcludedProductIDs []string
	Cutoff             *time.Time
	// OwnerSelection lists owner identifiers to include, in the user's
	// custom order. Empty means every owner, in discovery order.
	OwnerSelection []string
}

// ReportService orchestrates one report-generation run and assembles the
// final payload. All aggregation state is scoped to a single Generate call;
// only the session caches inside the collaborating services persist.
type ReportService struct {
	selectionService *SelectionService
	dateService      *DateSelectionService
	aggregation      *AggregationService
	irrService       *IRRService
	portfolioRepo    *repository.PortfolioFundRepository
	activityRepo     *repository.ActivityRepository
	valuationRepo    *repository.ValuationRepository
	logger           zerolog.Logger
}

// NewReportService creates a ReportService over the engine components.
func NewReportService(
	selectionService *SelectionService,
	dateService *DateSelectionService,
	aggregation *AggregationService,
	irrService *IRRService,
	portfolioRepo *repository.PortfolioFundRepository,
	activityRepo *repository.ActivityRepository,
	valuationRepo *repository.ValuationRepository,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{
		selectionService: selectionService,
		dateService:      dateService,
		aggregation:      aggregation,
		irrService:       irrService,
		portfolioRepo:    portfolioRepo,
		activityRepo:     activityRepo,
		valuationRepo:    valuationRepo,
		logger:           logger.With().Str("component", "report").Logger(),
	}
}

// Generate produces the report payload for one request.
//
// Selection errors surface before any gateway work. Missing valuations are
// collected across every product and fund and surfaced once, as a single
// consolidated error, only after the full scan. IRR failures degrade to
// null figures and never abort the run.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (model.ReportPayload, error) {
	if len(req.ClientGroupIDs) == 0 && len(req.ProductIDs) == 0 {
		return model.ReportPayload{}, apperrors.ErrNoProductsSelected
	}

	resolved, err := s.selectionService.Resolve(ctx, req.ClientGroupIDs, req.ProductIDs, req.ExcludedProductIDs)
	if err != nil {
		return model.ReportPayload{}, err
	}

	included := resolved.IncludedProducts()
	if len(included) == 0 {
		return model.ReportPayload{}, apperrors.ErrNoProductsSelected
	}

	// Selections accumulated before a cap change may exceed the cap; trim
	// deterministically before any figures are produced.
	s.dateService.TrimToCap(s.dateService.Cap())

	var (
		summaries  []model.ProductSummary
		missing    []apperrors.MissingValuation
		allFundIDs []string
		totalValue float64
	)

	// Products are processed one at a time; the sub-fetches within one
	// product run concurrently.
	for _, product := range included {
		summary, productMissing, fundIDs, err := s.buildProductSummary(ctx, product, req.Cutoff)
		if err != nil {
			return model.ReportPayload{}, err
		}
		missing = append(missing, productMissing...)
		allFundIDs = append(allFundIDs, fundIDs...)
		summaries = append(summaries, summary)
		totalValue += summary.CurrentValuation
	}

	if len(missing) > 0 {
		return model.ReportPayload{}, &apperrors.MissingValuationError{Missing: missing}
	}

	// The portfolio-wide figure spans several portfolios, so it is always a
	// partial query and never persisted.
	totalIRR := s.irrService.GetIRR(ctx, IRRScope{
		PortfolioFundIDs: allFundIDs,
		WholePortfolio:   false,
	}, req.Cutoff)

	earliest := earliestStartDate(summaries)
	owners := ownerDisplayNames(included, req.OwnerSelection)

	return s.assemble(summaries, totalValue, totalIRR, earliest, owners), nil
}

// buildProductSummary aggregates one product: its holdings are fetched,
// then the activity ledgers and valuation histories are loaded as
// simultaneous independent requests and joined before aggregation.
func (s *ReportService) buildProductSummary(ctx context.Context, product model.Product, cutoff *time.Time) (model.ProductSummary, []apperrors.MissingValuation, []string, error) {
	funds, err := s.portfolioRepo.GetPortfolioFunds(ctx, product.PortfolioID)
	if err != nil {
		return model.ProductSummary{}, nil, nil, fmt.Errorf("failed to load holdings for product %s: %w", product.ID, err)
	}

	fundIDs := make([]string, len(funds))
	for i, f := range funds {
		fundIDs[i] = f.ID
	}

	var (
		activities map[string][]model.ActivityRecord
		valuations map[string][]model.Valuation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.activityRepo.GetActivitiesForFunds(gctx, fundIDs)
		return err
	})
	g.Go(func() error {
		var err error
		valuations, err = s.valuationRepo.GetValuationsForFunds(gctx, fundIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ProductSummary{}, nil, nil, fmt.Errorf("failed to load data for product %s: %w", product.ID, err)
	}

	var (
		fundSummaries []model.FundSummary
		missing       []apperrors.MissingValuation
	)
	for _, fund := range funds {
		summary, missingValuation := s.aggregation.AggregateFund(fund, activities[fund.ID], valuations[fund.ID], cutoff)
		if missingValuation {
			missing = append(missing, apperrors.MissingValuation{
				ProductName: product.Name,
				FundName:    fund.FundName,
			})
			continue
		}
		fundSummaries = append(fundSummaries, summary)
	}

	summary := s.aggregation.AggregateProduct(ctx, product, fundSummaries, cutoff)
	return summary, missing, fundIDs, nil
}

// assemble merges the aggregates into the final payload.
func (s *ReportService) assemble(summaries []model.ProductSummary, totalValuation float64, totalIRR *float64, earliest *time.Time, owners []string) model.ReportPayload {
	return model.ReportPayload{
		Products:       summaries,
		TotalValuation: totalValuation,
		TotalIRR:       totalIRR,
		EarliestDate:   earliest,
		OwnerNames:     owners,
		TimePeriod:     s.timePeriodLabel(),
	}
}

// timePeriodLabel derives the report's period label: the most recent
// globally selected historical date, else the cut-off, else today.
func (s *ReportService) timePeriodLabel() string {
	if selected := s.dateService.UniqueSelectedDates(); len(selected) > 0 {
		return selected[0].Format(model.DateLabelFormat)
	}
	if cutoff := s.dateService.Cutoff(); cutoff != nil {
		return cutoff.Format(model.DateLabelFormat)
	}
	return time.Now().Format(model.DateLabelFormat)
}

// earliestStartDate finds the earliest activity timestamp across products.
func earliestStartDate(summaries []model.ProductSummary) *time.Time {
	var earliest *time.Time
	for _, p := range summaries {
		if p.StartDate != nil && (earliest == nil || p.StartDate.Before(*earliest)) {
			date := *p.StartDate
			earliest = &date
		}
	}
	return earliest
}

// ownerDisplayNames derives the ordered owner name list. Structured owner
// records (with their known-as alias) take precedence over a product's flat
// owner-name string when both exist, which avoids duplicated or garbled
// names. A non-empty selection filters the candidates and fixes their
// order; owners match by id or by display name.
func ownerDisplayNames(products []model.Product, selection []string) []string {
	type owner struct {
		key  string
		name string
	}

	var candidates []owner
	seenName := make(map[string]bool)

	add := func(key, name string) {
		if name == "" || seenName[name] {
			return
		}
		seenName[name] = true
		candidates = append(candidates, owner{key: key, name: name})
	}

	for _, p := range products {
		if len(p.Owners) > 0 {
			for _, o := range p.Owners {
				add(o.ID, o.DisplayName())
			}
			continue
		}
		add(p.OwnerName, p.OwnerName)
	}

	if len(selection) == 0 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.name
		}
		return names
	}

	names := []string{}
	for _, want := range selection {
		for _, c := range candidates {
			if c.key == want || c.name == want {
				names = append(names, c.name)
				break
			}
		}
	}
	return names
}
