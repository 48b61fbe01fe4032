package service

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
)

// IRRComputer is the external compute capability. Implementations must
// honour storeResult=false so historical and partial-scope queries never
// overwrite the canonically stored IRR.
type IRRComputer interface {
	ComputeIRR(ctx context.Context, portfolioID string, portfolioFundIDs []string, asOf *time.Time, storeResult bool) (float64, error)
	StoredIRR(ctx context.Context, portfolioID string) (*float64, error)
}

// IRRScope identifies what an IRR request covers. WholePortfolio marks the
// fund set as the portfolio's complete current holdings; anything narrower
// is a partial query.
type IRRScope struct {
	PortfolioID      string
	PortfolioFundIDs []string
	WholePortfolio   bool
}

// IRRService orchestrates rate-of-return lookups: it decides when a stored
// value suffices, when computation is required, and whether a computed value
// may be persisted. Computation failures resolve to nil and never abort the
// caller's wider processing.
type IRRService struct {
	computer     IRRComputer
	irrRepo      *repository.IRRRepository
	historyCache *cache.Cache
	logger       zerolog.Logger
}

// NewIRRService creates an IRRService. The history cache must be scoped to
// one user session.
func NewIRRService(computer IRRComputer, irrRepo *repository.IRRRepository, historyCache *cache.Cache, logger zerolog.Logger) *IRRService {
	return &IRRService{
		computer:     computer,
		irrRepo:      irrRepo,
		historyCache: historyCache,
		logger:       logger.With().Str("component", "irr").Logger(),
	}
}

// GetIRR resolves the IRR for a scope. A whole-portfolio request with no
// as-of date first tries the stored canonical value and is the only request
// allowed to persist a freshly computed one. Every other combination is a
// historical or partial query and is computed with persistence disabled.
func (s *IRRService) GetIRR(ctx context.Context, scope IRRScope, asOf *time.Time) *float64 {
	current := scope.WholePortfolio && asOf == nil && scope.PortfolioID != ""

	if current {
		stored, err := s.computer.StoredIRR(ctx, scope.PortfolioID)
		if err != nil {
			s.logger.Warn().Err(err).Str("portfolio_id", scope.PortfolioID).Msg("stored IRR lookup failed")
		} else if stored != nil {
			return stored
		}
	}

	result, err := s.computer.ComputeIRR(ctx, scope.PortfolioID, scope.PortfolioFundIDs, asOf, current)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("portfolio_id", scope.PortfolioID).
			Int("funds", len(scope.PortfolioFundIDs)).
			Bool("whole_portfolio", scope.WholePortfolio).
			Msg("IRR computation failed, resolving to null")
		return nil
	}

	return &result
}

// History returns the combined fund-level and portfolio-level historical
// IRR series for a product, most recent first. Series are cached for the
// session; the underlying store is queried at most once per product.
func (s *IRRService) History(ctx context.Context, productID string) ([]model.IRRRecord, error) {
	if hit, ok := s.historyCache.Get(productID); ok {
		return hit.([]model.IRRRecord), nil
	}

	records, err := s.irrRepo.GetHistoryForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.historyCache.Set(productID, records, cache.NoExpiration)
	return records, nil
}
