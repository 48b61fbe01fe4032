package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
)

// SelectionService resolves the user's selection of client groups and
// products into a deduplicated, provenance-tagged related-product set.
//
// Per-client-group product lists are cached for the session. Cache misses
// for distinct groups are fetched in parallel, and concurrent resolutions
// asking for the same uncached group share a single in-flight fetch.
type SelectionService struct {
	clientGroupRepo *repository.ClientGroupRepository
	productRepo     *repository.ProductRepository
	groupCache      *cache.Cache
	flight          singleflight.Group
	scheduler       *Scheduler
	debounce        time.Duration
	logger          zerolog.Logger
}

// NewSelectionService creates a SelectionService. The cache must be scoped
// to one user session; pass a fresh cache to start cold.
func NewSelectionService(
	clientGroupRepo *repository.ClientGroupRepository,
	productRepo *repository.ProductRepository,
	groupCache *cache.Cache,
	debounce time.Duration,
	logger zerolog.Logger,
) *SelectionService {
	return &SelectionService{
		clientGroupRepo: clientGroupRepo,
		productRepo:     productRepo,
		groupCache:      groupCache,
		scheduler:       NewScheduler(),
		debounce:        debounce,
		logger:          logger.With().Str("component", "selection").Logger(),
	}
}

// ResolvedSelection is the outcome of resolving one selection input.
type ResolvedSelection struct {
	// RelatedProducts contains each product exactly once, direct picks first.
	RelatedProducts []model.Product
	// Provenance maps product id to why the product is included.
	Provenance map[string]model.Provenance
	// Excluded holds the product ids the user excluded. Excluded products
	// stay in RelatedProducts; consumers apply the exclusion when totalling.
	Excluded map[string]bool
}

// IncludedProducts returns the related products with exclusions applied,
// preserving order.
func (rs *ResolvedSelection) IncludedProducts() []model.Product {
	included := make([]model.Product, 0, len(rs.RelatedProducts))
	for _, p := range rs.RelatedProducts {
		if !rs.Excluded[p.ID] {
			included = append(included, p)
		}
	}
	return included
}

// Resolve builds the related-product set for the given selection. Directly
// selected products are added first and tagged direct; products of each
// selected client group follow, accumulating group ids in their provenance.
// A product reachable through several paths appears exactly once.
func (s *SelectionService) Resolve(ctx context.Context, clientGroupIDs, productIDs, excludedProductIDs []string) (*ResolvedSelection, error) {
	if err := checkDuplicates(productIDs); err != nil {
		return nil, err
	}

	result := &ResolvedSelection{
		Provenance: make(map[string]model.Provenance),
		Excluded:   make(map[string]bool),
	}
	for _, id := range excludedProductIDs {
		result.Excluded[id] = true
	}

	seen := make(map[string]bool)

	if len(productIDs) > 0 {
		direct, err := s.productRepo.GetProductsByIDs(ctx, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve direct product selection: %w", err)
		}
		for _, p := range direct {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			result.RelatedProducts = append(result.RelatedProducts, p)
			result.Provenance[p.ID] = model.Provenance{Direct: true}
		}
	}

	groupProducts, err := s.productsForGroups(ctx, clientGroupIDs)
	if err != nil {
		return nil, err
	}

	for _, groupID := range clientGroupIDs {
		for _, p := range groupProducts[groupID] {
			prov := result.Provenance[p.ID]
			prov.ClientGroups = appendUnique(prov.ClientGroups, groupID)
			result.Provenance[p.ID] = prov

			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			result.RelatedProducts = append(result.RelatedProducts, p)
		}
	}

	return result, nil
}

// ScheduleResolve debounces a resolution triggered by a UI selection change.
// Rapid successive calls collapse into one resolution after the quiet
// period; a superseded pending resolution never runs. The callback receives
// the outcome; an in-flight fetch is not cancelled, its result is simply
// handed to the latest callback or discarded with the superseded run.
func (s *SelectionService) ScheduleResolve(ctx context.Context, clientGroupIDs, productIDs, excludedProductIDs []string, callback func(*ResolvedSelection, error)) {
	s.scheduler.Schedule("selection-resolve", s.debounce, func() {
		resolved, err := s.Resolve(ctx, clientGroupIDs, productIDs, excludedProductIDs)
		callback(resolved, err)
	})
}

// Close stops any pending debounced resolutions.
func (s *SelectionService) Close() {
	s.scheduler.Stop()
}

// productsForGroups returns the product list per requested group, serving
// cached groups without a fetch and loading the rest concurrently.
func (s *SelectionService) productsForGroups(ctx context.Context, groupIDs []string) (map[string][]model.Product, error) {
	results := make(map[string][]model.Product, len(groupIDs))

	var uncached []string
	for _, id := range groupIDs {
		if id == "" {
			continue
		}
		if hit, ok := s.groupCache.Get(id); ok {
			results[id] = hit.([]model.Product)
			continue
		}
		uncached = append(uncached, id)
	}

	if len(uncached) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	fetched := make([][]model.Product, len(uncached))

	for i, groupID := range uncached {
		i, groupID := i, groupID
		g.Go(func() error {
			// One in-flight fetch per group id at a time, shared across
			// concurrent resolutions.
			v, err, _ := s.flight.Do(groupID, func() (interface{}, error) {
				products, err := s.productRepo.GetProductsByClientGroup(gctx, groupID)
				if err != nil {
					return nil, err
				}
				s.groupCache.Set(groupID, products, cache.NoExpiration)
				return products, nil
			})
			if err != nil {
				return fmt.Errorf("failed to fetch products for client group %s: %w", groupID, err)
			}
			fetched[i] = v.([]model.Product)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, groupID := range uncached {
		results[groupID] = fetched[i]
	}

	return results, nil
}

// checkDuplicates rejects a direct selection naming the same product twice.
func checkDuplicates(productIDs []string) error {
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateProductSelection, id)
		}
		seen[id] = true
	}
	return nil
}

// appendUnique appends value to values if absent, keeping sorted order so
// provenance comparisons are deterministic.
func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	values = append(values, value)
	sort.Strings(values)
	return values
}
