package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/service"
	"github.com/advisorly/review-engine-backend/internal/testutil"
)

// stubHistory serves canned IRR series per product.
type stubHistory struct {
	records map[string][]model.IRRRecord
}

func (s stubHistory) History(_ context.Context, productID string) ([]model.IRRRecord, error) {
	return s.records[productID], nil
}

func historyOn(dates ...time.Time) []model.IRRRecord {
	records := make([]model.IRRRecord, len(dates))
	for i, d := range dates {
		records[i] = model.IRRRecord{
			ID:    testutil.MakeID(),
			Scope: model.IRRScopePortfolio,
			Date:  d,
		}
	}
	return records
}

func newDateService(dateCap int, records map[string][]model.IRRRecord) *service.DateSelectionService {
	return service.NewDateSelectionService(stubHistory{records: records}, dateCap, zerolog.Nop())
}

// TestDateSelectionService_DiscoverDates tests date discovery across products.
//
// WHY: The picker shows one row per calendar date with the products that
// have data for it. Discovery must union dates without duplicating rows and
// must keep per-product availability exact, or selection validation breaks.
func TestDateSelectionService_DiscoverDates(t *testing.T) {
	jan := testutil.Date(2024, time.January, 31)
	feb := testutil.Date(2024, time.February, 29)

	svc := newDateService(8, map[string][]model.IRRRecord{
		"product-x": historyOn(jan, feb),
		"product-y": historyOn(feb),
	})

	dates, err := svc.DiscoverDates(context.Background(), []string{"product-x", "product-y"})
	require.NoError(t, err)
	require.Len(t, dates, 2)

	// Most recent first.
	assert.Equal(t, feb, dates[0].Date)
	assert.Equal(t, "Feb 2024", dates[0].Label)
	assert.True(t, dates[0].ProductIDs["product-x"])
	assert.True(t, dates[0].ProductIDs["product-y"])

	assert.Equal(t, jan, dates[1].Date)
	assert.True(t, dates[1].ProductIDs["product-x"])
	assert.False(t, dates[1].ProductIDs["product-y"])
}

// TestDateSelectionService_Select tests selection validation and the global
// unique-date cap.
//
// WHY: The cap bounds unique dates across all products combined, not per
// product. Selecting a date another product already holds must stay free,
// while a new unique date past the cap must be rejected atomically.
func TestDateSelectionService_Select(t *testing.T) {
	jan := testutil.Date(2024, time.January, 31)
	feb := testutil.Date(2024, time.February, 29)
	mar := testutil.Date(2024, time.March, 31)

	setup := func(t *testing.T, dateCap int) *service.DateSelectionService {
		t.Helper()
		svc := newDateService(dateCap, map[string][]model.IRRRecord{
			"product-x": historyOn(jan, feb, mar),
			"product-y": historyOn(feb, mar),
		})
		_, err := svc.DiscoverDates(context.Background(), []string{"product-x", "product-y"})
		require.NoError(t, err)
		return svc
	}

	t.Run("rejects a date the product has no data for", func(t *testing.T) {
		svc := setup(t, 8)

		err := svc.Select("product-y", []time.Time{jan})
		assert.ErrorIs(t, err, apperrors.ErrDateNotAvailable)
		assert.Zero(t, svc.GlobalUniqueCount())
	})

	t.Run("rejects an undiscovered date", func(t *testing.T) {
		svc := setup(t, 8)

		err := svc.Select("product-x", []time.Time{testutil.Date(2020, time.June, 30)})
		assert.ErrorIs(t, err, apperrors.ErrDateNotAvailable)
	})

	t.Run("counts unique dates across all products against the cap", func(t *testing.T) {
		svc := setup(t, 2)

		require.NoError(t, svc.Select("product-x", []time.Time{jan, feb}))

		// feb is already selected globally, so this adds no unique date.
		require.NoError(t, svc.Select("product-y", []time.Time{feb}))
		assert.Equal(t, 2, svc.GlobalUniqueCount())

		// mar would be a third unique date.
		err := svc.Select("product-y", []time.Time{mar})
		assert.ErrorIs(t, err, apperrors.ErrDateCapExceeded)

		// The rejected addition must not partially apply.
		assert.Equal(t, 2, svc.GlobalUniqueCount())
		assert.Len(t, svc.Selections()["product-y"], 1)
	})

	t.Run("re-selecting an already selected date is a no-op", func(t *testing.T) {
		svc := setup(t, 2)

		require.NoError(t, svc.Select("product-x", []time.Time{jan}))
		require.NoError(t, svc.Select("product-x", []time.Time{jan}))

		assert.Equal(t, 1, svc.GlobalUniqueCount())
	})

	t.Run("deselect is always accepted", func(t *testing.T) {
		svc := setup(t, 8)

		require.NoError(t, svc.Select("product-x", []time.Time{jan}))
		svc.Deselect("product-x", []time.Time{jan})
		svc.Deselect("product-x", []time.Time{mar}) // never selected

		assert.Zero(t, svc.GlobalUniqueCount())
	})
}

// TestDateSelectionService_SelectMostRecent tests the bulk most-recent pick.
//
// WHY: "Most recent N" operates on the global unique date list, then trims
// each product to the subset it actually has. A product missing the newest
// date must end up with fewer selections, not an invalid one.
func TestDateSelectionService_SelectMostRecent(t *testing.T) {
	jan := testutil.Date(2024, time.January, 31)
	feb := testutil.Date(2024, time.February, 29)
	mar := testutil.Date(2024, time.March, 31)
	apr := testutil.Date(2024, time.April, 30)

	svc := newDateService(8, map[string][]model.IRRRecord{
		"product-x": historyOn(jan, feb, mar),
		"product-y": historyOn(feb, mar, apr),
	})
	_, err := svc.DiscoverDates(context.Background(), []string{"product-x", "product-y"})
	require.NoError(t, err)

	svc.SelectMostRecent(2)

	// Global top two are apr and mar; product-x has no data for apr.
	selections := svc.Selections()
	assert.Equal(t, []time.Time{mar}, selections["product-x"])
	assert.Equal(t, []time.Time{apr, mar}, selections["product-y"])
	assert.Equal(t, 2, svc.GlobalUniqueCount())

	t.Run("clamps to the cap", func(t *testing.T) {
		capped := newDateService(2, map[string][]model.IRRRecord{
			"product-y": historyOn(jan, feb, mar, apr),
		})
		_, err := capped.DiscoverDates(context.Background(), []string{"product-y"})
		require.NoError(t, err)

		capped.SelectMostRecent(10)
		assert.Equal(t, 2, capped.GlobalUniqueCount())
	})
}

// TestDateSelectionService_SetCutoff tests greying and the selection sweep.
//
// WHY: Moving the cut-off back must immediately grey out later dates and
// silently drop them from every product's selection; a stale selection past
// the cut-off would feed figures the report is not allowed to show.
func TestDateSelectionService_SetCutoff(t *testing.T) {
	jan := testutil.Date(2024, time.January, 31)
	feb := testutil.Date(2024, time.February, 29)
	mar := testutil.Date(2024, time.March, 31)

	svc := newDateService(8, map[string][]model.IRRRecord{
		"product-x": historyOn(jan, feb, mar),
	})
	_, err := svc.DiscoverDates(context.Background(), []string{"product-x"})
	require.NoError(t, err)

	require.NoError(t, svc.Select("product-x", []time.Time{jan, mar}))

	cutoff := feb
	svc.SetCutoff(&cutoff)

	// mar is past the cut-off: greyed out and dropped from the selection.
	for _, d := range svc.AvailableDates() {
		assert.Equal(t, d.Date.After(cutoff), d.PastCutoff, "date %s", d.Label)
	}
	assert.Equal(t, []time.Time{jan}, svc.UniqueSelectedDates())

	// Selecting a greyed date is rejected.
	err = svc.Select("product-x", []time.Time{mar})
	assert.ErrorIs(t, err, apperrors.ErrDatePastCutoff)

	// Clearing the cut-off makes it selectable again, but does not restore
	// the dropped selection.
	svc.SetCutoff(nil)
	assert.Equal(t, []time.Time{jan}, svc.UniqueSelectedDates())
	require.NoError(t, svc.Select("product-x", []time.Time{mar}))
}

// TestDateSelectionService_TrimToCap tests deterministic cap enforcement
// over accumulated selections.
func TestDateSelectionService_TrimToCap(t *testing.T) {
	jan := testutil.Date(2024, time.January, 31)
	feb := testutil.Date(2024, time.February, 29)
	mar := testutil.Date(2024, time.March, 31)

	svc := newDateService(8, map[string][]model.IRRRecord{
		"product-x": historyOn(jan, feb, mar),
		"product-y": historyOn(jan, mar),
	})
	_, err := svc.DiscoverDates(context.Background(), []string{"product-x", "product-y"})
	require.NoError(t, err)

	require.NoError(t, svc.Select("product-x", []time.Time{jan, feb, mar}))
	require.NoError(t, svc.Select("product-y", []time.Time{jan, mar}))

	// Lowering the cap keeps the globally most recent unique dates.
	svc.TrimToCap(2)

	assert.Equal(t, []time.Time{mar, feb}, svc.UniqueSelectedDates())
	selections := svc.Selections()
	assert.Equal(t, []time.Time{mar, feb}, selections["product-x"])
	assert.Equal(t, []time.Time{mar}, selections["product-y"])

	t.Run("no-op when under the cap", func(t *testing.T) {
		svc.TrimToCap(8)
		assert.Equal(t, 2, svc.GlobalUniqueCount())
	})
}
