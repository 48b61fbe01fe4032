package irrcalc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
)

// Computer derives IRR figures from the activity ledger and valuations.
// It is the in-process implementation of the compute capability: callers
// pass storeResult=false for historical or partial-scope queries so the
// canonical stored value is never clobbered.
type Computer struct {
	activityRepo  *repository.ActivityRepository
	valuationRepo *repository.ValuationRepository
	irrRepo       *repository.IRRRepository
	logger        zerolog.Logger
}

// NewComputer creates a Computer over the gateway repositories.
func NewComputer(
	activityRepo *repository.ActivityRepository,
	valuationRepo *repository.ValuationRepository,
	irrRepo *repository.IRRRepository,
	logger zerolog.Logger,
) *Computer {
	return &Computer{
		activityRepo:  activityRepo,
		valuationRepo: valuationRepo,
		irrRepo:       irrRepo,
		logger:        logger.With().Str("component", "irrcalc").Logger(),
	}
}

// ComputeIRR computes the annualised IRR percentage over the given portfolio
// funds. When asOf is non-nil, only activity and valuations at or before that
// date participate. The result is persisted as the portfolio's canonical IRR
// only when storeResult is true and a portfolio id is supplied.
func (c *Computer) ComputeIRR(ctx context.Context, portfolioID string, portfolioFundIDs []string, asOf *time.Time, storeResult bool) (float64, error) {
	if len(portfolioFundIDs) == 0 {
		return 0, ErrInsufficientCashFlows
	}

	activities, err := c.activityRepo.GetActivitiesForFunds(ctx, portfolioFundIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load activities for IRR: %w", err)
	}

	valuations, err := c.valuationRepo.GetValuationsForFunds(ctx, portfolioFundIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load valuations for IRR: %w", err)
	}

	flows := buildCashFlows(portfolioFundIDs, activities, valuations, asOf)

	rate, err := RateOfReturn(flows)
	if err != nil {
		return 0, err
	}
	percentage := rate * 100

	if storeResult && portfolioID != "" {
		if err := c.irrRepo.UpsertStoredIRR(ctx, portfolioID, percentage); err != nil {
			return 0, fmt.Errorf("failed to store IRR for portfolio %s: %w", portfolioID, err)
		}
		c.logger.Debug().Str("portfolio_id", portfolioID).Float64("irr", percentage).Msg("stored canonical IRR")
	}

	return percentage, nil
}

// StoredIRR returns the last-persisted canonical IRR for a portfolio, or
// nil when none has been stored.
func (c *Computer) StoredIRR(ctx context.Context, portfolioID string) (*float64, error) {
	irr, err := c.irrRepo.GetStoredIRR(ctx, portfolioID)
	if errors.Is(err, apperrors.ErrStoredIRRNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &irr, nil
}

// buildCashFlows turns ledger entries into signed flows (contributions
// negative) and closes the series with the latest usable valuation total as
// a positive terminal flow.
func buildCashFlows(fundIDs []string, activities map[string][]model.ActivityRecord, valuations map[string][]model.Valuation, asOf *time.Time) []CashFlow {
	var flows []CashFlow

	terminalDate := time.Time{}
	terminalValue := 0.0

	for _, fundID := range fundIDs {
		for _, rec := range activities[fundID] {
			if asOf != nil && rec.Date.After(*asOf) {
				continue
			}
			direction, ok := flowDirection(rec.Type)
			if !ok {
				continue
			}
			// Ledger amounts are signed; the flow sign comes from the
			// activity type alone.
			flows = append(flows, CashFlow{Date: rec.Date, Amount: direction * math.Abs(rec.Amount)})
		}

		// Most recent valuation at or before asOf; series are sorted ASC.
		var latest *model.Valuation
		for i := range valuations[fundID] {
			v := &valuations[fundID][i]
			if asOf != nil && v.Date.After(*asOf) {
				break
			}
			latest = v
		}
		if latest != nil {
			terminalValue += latest.Value
			if latest.Date.After(terminalDate) {
				terminalDate = latest.Date
			}
		}
	}

	if !terminalDate.IsZero() {
		flows = append(flows, CashFlow{Date: terminalDate, Amount: terminalValue})
	}

	return flows
}

// flowDirection maps an activity type to its cash-flow sign from the
// investor's perspective. Money in is negative, money out positive.
func flowDirection(activityType string) (float64, bool) {
	switch activityType {
	case model.ActivityInvestment, model.ActivityRegularInvestment, model.ActivityTaxUplift,
		model.ActivityProductSwitchIn, model.ActivitySwitchIn, model.ActivityFundSwitchIn:
		return -1, true
	case model.ActivityWithdrawal, model.ActivityProductSwitchOut,
		model.ActivitySwitchOut, model.ActivityFundSwitchOut:
		return 1, true
	default:
		return 0, false
	}
}
