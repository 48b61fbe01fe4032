package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/service"
	"github.com/advisorly/review-engine-backend/internal/testutil"
)

func productIDsOf(products []model.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

// TestSelectionService_Resolve tests building the related-product set.
//
// WHY: A product reachable both directly and through a client group must
// appear exactly once with merged provenance. Duplicates here mean
// double-counted totals in every report downstream.
func TestSelectionService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("deduplicates a product reachable through both paths", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)
		sibling := testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestSelectionService(t, db)

		resolved, err := svc.Resolve(ctx, []string{group.ID}, []string{product.ID}, nil)
		require.NoError(t, err)

		require.Len(t, resolved.RelatedProducts, 2)
		assert.ElementsMatch(t, []string{product.ID, sibling.ID}, productIDsOf(resolved.RelatedProducts))

		// Direct picks come first.
		assert.Equal(t, product.ID, resolved.RelatedProducts[0].ID)

		// Merged provenance: direct pick plus group membership.
		prov := resolved.Provenance[product.ID]
		assert.True(t, prov.Direct)
		assert.Equal(t, []string{group.ID}, prov.ClientGroups)

		prov = resolved.Provenance[sibling.ID]
		assert.False(t, prov.Direct)
		assert.Equal(t, []string{group.ID}, prov.ClientGroups)
	})

	t.Run("repeating a group in the input does not duplicate provenance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestSelectionService(t, db)

		resolved, err := svc.Resolve(ctx, []string{group.ID, group.ID}, nil, nil)
		require.NoError(t, err)

		require.Len(t, resolved.RelatedProducts, 1)
		assert.Equal(t, []string{group.ID}, resolved.Provenance[product.ID].ClientGroups)
	})

	t.Run("rejects duplicate direct product ids", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestSelectionService(t, db)

		_, err := svc.Resolve(ctx, nil, []string{product.ID, product.ID}, nil)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateProductSelection)
	})

	t.Run("keeps excluded products in the set but out of the included list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		kept := testutil.NewProduct(group.ID).Build(t, db)
		excluded := testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestSelectionService(t, db)

		resolved, err := svc.Resolve(ctx, []string{group.ID}, nil, []string{excluded.ID})
		require.NoError(t, err)

		assert.Len(t, resolved.RelatedProducts, 2)
		assert.True(t, resolved.Excluded[excluded.ID])

		included := resolved.IncludedProducts()
		require.Len(t, included, 1)
		assert.Equal(t, kept.ID, included[0].ID)
	})

	t.Run("serves repeated group resolutions from the session cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestSelectionService(t, db)

		first, err := svc.Resolve(ctx, []string{group.ID}, nil, nil)
		require.NoError(t, err)
		require.Len(t, first.RelatedProducts, 1)

		// A product added after the first resolution is invisible for the
		// rest of the session; the cached membership is reused as-is.
		testutil.NewProduct(group.ID).Build(t, db)

		second, err := svc.Resolve(ctx, []string{group.ID}, nil, nil)
		require.NoError(t, err)
		assert.Len(t, second.RelatedProducts, 1)
	})
}

// TestSelectionService_ScheduleResolve tests the debounced recompute.
//
// WHY: Ticking several client-group checkboxes in quick succession must
// collapse into one resolution of the final state; a superseded pending
// resolution must never run its callback.
func TestSelectionService_ScheduleResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	group := testutil.NewClientGroup().Build(t, db)
	first := testutil.NewProduct(group.ID).Build(t, db)
	second := testutil.NewProduct(group.ID).Build(t, db)
	_ = first

	svc := testutil.NewTestSelectionService(t, db)

	results := make(chan *service.ResolvedSelection, 2)
	callback := func(resolved *service.ResolvedSelection, err error) {
		require.NoError(t, err)
		results <- resolved
	}

	svc.ScheduleResolve(context.Background(), nil, []string{first.ID}, nil, callback)
	svc.ScheduleResolve(context.Background(), nil, []string{second.ID}, nil, callback)

	select {
	case resolved := <-results:
		require.Len(t, resolved.RelatedProducts, 1)
		assert.Equal(t, second.ID, resolved.RelatedProducts[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced resolution never ran")
	}

	// The superseded first resolution must not fire.
	select {
	case <-results:
		t.Fatal("Superseded resolution ran its callback")
	case <-time.After(100 * time.Millisecond):
	}
}
