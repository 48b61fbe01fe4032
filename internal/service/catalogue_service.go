package service

import (
	"context"

	cache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
)

// catalogueCacheKey is the cache entry holding the full product catalogue.
const catalogueCacheKey = "catalogue"

// CatalogueService prefetches the full product catalogue in the background
// so product pickers stay responsive. A failed refresh is logged and the
// previous catalogue (if any) is kept; client-group-driven selection does
// not depend on this cache at all.
type CatalogueService struct {
	productRepo *repository.ProductRepository
	store       *cache.Cache
	cron        *cron.Cron
	logger      zerolog.Logger
}

// NewCatalogueService creates a CatalogueService over the shared session cache.
func NewCatalogueService(productRepo *repository.ProductRepository, store *cache.Cache, logger zerolog.Logger) *CatalogueService {
	return &CatalogueService{
		productRepo: productRepo,
		store:       store,
		cron:        cron.New(),
		logger:      logger.With().Str("component", "catalogue").Logger(),
	}
}

// Start refreshes the catalogue once immediately and then on the given cron
// schedule. An empty spec disables the recurring job.
func (s *CatalogueService) Start(spec string) error {
	s.Refresh(context.Background())

	if spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() {
		s.Refresh(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the recurring refresh.
func (s *CatalogueService) Stop() {
	s.cron.Stop()
}

// Refresh loads the full catalogue into the cache. Failure is non-fatal.
func (s *CatalogueService) Refresh(ctx context.Context) {
	products, err := s.productRepo.GetAllProducts(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalogue prefetch failed; continuing without it")
		return
	}

	s.store.Set(catalogueCacheKey, products, cache.NoExpiration)
	s.logger.Debug().Int("products", len(products)).Msg("catalogue refreshed")
}

// Catalogue returns the cached catalogue, or ok=false when the prefetch has
// not succeeded yet.
func (s *CatalogueService) Catalogue() ([]model.Product, bool) {
	if hit, ok := s.store.Get(catalogueCacheKey); ok {
		return hit.([]model.Product), true
	}
	return nil, false
}
