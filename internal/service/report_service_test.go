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

// TestReportService_Generate tests a full report run over the database.
//
// WHY: This is the pipeline a reviewer actually exercises: resolve the
// selection, aggregate every product, collapse inactive holdings, and
// assemble the payload. The scenario covers the synthetic previous-funds
// row, total identities, and owner name assembly in one pass.
func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("generates the full payload for one client group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).WithName("Acme Pension").Build(t, db)
		testutil.CreateProductOwner(t, db, product.ID, "Jane", "Smith", "", 0)
		testutil.CreateProductOwner(t, db, product.ID, "Jonathan", "Smith", "Jon", 1)

		active := testutil.NewPortfolioFund(product.PortfolioID).
			WithFundName("Active Fund").
			WithRiskFactor(4).
			Build(t, db)
		testutil.CreateActivity(t, db, active.ID, "2023-01-01", model.ActivityInvestment, 80000)
		testutil.CreateValuation(t, db, active.ID, "2024-01", 100000, "2024-01-31")

		closed := testutil.NewPortfolioFund(product.PortfolioID).
			WithFundName("Closed Fund").
			Inactive(testutil.Date(2023, time.June, 30)).
			Build(t, db)
		testutil.CreateActivity(t, db, closed.ID, "2022-05-01", model.ActivityInvestment, 20000)
		testutil.CreateActivity(t, db, closed.ID, "2023-06-01", model.ActivityWithdrawal, 5000)

		svc := testutil.NewTestReportService(t, db, 8)

		payload, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs: []string{group.ID},
		})
		require.NoError(t, err)

		require.Len(t, payload.Products, 1)
		summary := payload.Products[0]
		assert.Equal(t, "Acme Pension", summary.ProductName)
		assert.Equal(t, 100000.0, summary.CurrentValuation)
		assert.Equal(t, 100000.0, payload.TotalValuation)

		// Active fund plus the previous-funds aggregate.
		require.Len(t, summary.Funds, 2)
		assert.Equal(t, "Active Fund", summary.Funds[0].FundName)

		previous := summary.Funds[1]
		assert.True(t, previous.IsPrevious)
		assert.Equal(t, model.PreviousFundsName, previous.FundName)
		assert.Equal(t, 15000.0, previous.Totals.NetFlow)
		assert.Zero(t, previous.CurrentValuation)
		require.Len(t, previous.Merged, 1)
		assert.Equal(t, "Closed Fund", previous.Merged[0].FundName)

		// Product totals are the sum over both rows.
		assert.Equal(t, 100000.0, summary.Totals.Investment)
		assert.Equal(t, 95000.0, summary.Totals.NetFlow)

		// Earliest activity across all funds anchors the report.
		require.NotNil(t, payload.EarliestDate)
		assert.Equal(t, testutil.Date(2022, time.May, 1), *payload.EarliestDate)

		// Structured owners win; the known-as alias replaces the formal name.
		assert.Equal(t, []string{"Jane Smith", "Jon"}, payload.OwnerNames)

		// No selected dates and no cut-off: the period labels as today.
		assert.Equal(t, time.Now().Format(model.DateLabelFormat), payload.TimePeriod)
	})

	t.Run("owner selection filters and orders the names", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)
		testutil.CreateProductOwner(t, db, product.ID, "Jane", "Smith", "", 0)
		testutil.CreateProductOwner(t, db, product.ID, "Jonathan", "Smith", "Jon", 1)

		fund := testutil.NewPortfolioFund(product.PortfolioID).Build(t, db)
		testutil.CreateValuation(t, db, fund.ID, "2024-01", 5000, "2024-01-31")

		svc := testutil.NewTestReportService(t, db, 8)

		payload, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs: []string{group.ID},
			OwnerSelection: []string{"Jon", "Jane Smith"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jon", "Jane Smith"}, payload.OwnerNames)
	})

	t.Run("reports every missing valuation after the full scan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).WithName("Gap Pension").Build(t, db)

		first := testutil.NewPortfolioFund(product.PortfolioID).WithFundName("Fund One").Build(t, db)
		testutil.CreateActivity(t, db, first.ID, "2023-01-01", model.ActivityInvestment, 1000)
		second := testutil.NewPortfolioFund(product.PortfolioID).WithFundName("Fund Two").Build(t, db)
		testutil.CreateActivity(t, db, second.ID, "2023-02-01", model.ActivityInvestment, 2000)

		svc := testutil.NewTestReportService(t, db, 8)

		_, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs: []string{group.ID},
		})

		var missingErr *apperrors.MissingValuationError
		require.ErrorAs(t, err, &missingErr)
		require.Len(t, missingErr.Missing, 2)
		assert.Equal(t, "Gap Pension - Fund One", missingErr.Missing[0].String())
		assert.Equal(t, "Gap Pension - Fund Two", missingErr.Missing[1].String())
	})

	t.Run("valuations resolve against the cut-off", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)

		fund := testutil.NewPortfolioFund(product.PortfolioID).Build(t, db)
		testutil.CreateActivity(t, db, fund.ID, "2023-01-01", model.ActivityInvestment, 1000)
		testutil.CreateValuation(t, db, fund.ID, "2023-06", 1100, "2023-06-30")
		testutil.CreateValuation(t, db, fund.ID, "2024-01", 1400, "2024-01-31")

		svc := testutil.NewTestReportService(t, db, 8)

		cutoff := testutil.Date(2023, time.September, 30)
		payload, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs: []string{group.ID},
			Cutoff:         &cutoff,
		})
		require.NoError(t, err)

		assert.Equal(t, 1100.0, payload.TotalValuation)
		assert.Equal(t, "Sep 2023", payload.TimePeriod)
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db, 8)

		_, err := svc.Generate(ctx, service.ReportRequest{})
		assert.ErrorIs(t, err, apperrors.ErrNoProductsSelected)
	})

	t.Run("rejects a selection with everything excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)

		svc := testutil.NewTestReportService(t, db, 8)

		_, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs:     []string{group.ID},
			ExcludedProductIDs: []string{product.ID},
		})
		assert.ErrorIs(t, err, apperrors.ErrNoProductsSelected)
	})

	t.Run("excluded products are left out of the totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)

		kept := testutil.NewProduct(group.ID).Build(t, db)
		keptFund := testutil.NewPortfolioFund(kept.PortfolioID).Build(t, db)
		testutil.CreateValuation(t, db, keptFund.ID, "2024-01", 5000, "2024-01-31")

		excluded := testutil.NewProduct(group.ID).Build(t, db)
		excludedFund := testutil.NewPortfolioFund(excluded.PortfolioID).Build(t, db)
		testutil.CreateValuation(t, db, excludedFund.ID, "2024-01", 7000, "2024-01-31")

		svc := testutil.NewTestReportService(t, db, 8)

		payload, err := svc.Generate(ctx, service.ReportRequest{
			ClientGroupIDs:     []string{group.ID},
			ExcludedProductIDs: []string{excluded.ID},
		})
		require.NoError(t, err)

		require.Len(t, payload.Products, 1)
		assert.Equal(t, kept.ID, payload.Products[0].ProductID)
		assert.Equal(t, 5000.0, payload.TotalValuation)
	})
}

// TestReportService_Generate_IRRDegradation tests that IRR failures never
// abort a run.
//
// WHY: A portfolio with too few cash flows cannot anchor an IRR. The report
// must still render, with null figures where computation failed.
func TestReportService_Generate_IRRDegradation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	group := testutil.NewClientGroup().Build(t, db)
	product := testutil.NewProduct(group.ID).Build(t, db)

	// A valuation but no activity: no sign change, IRR unsolvable.
	fund := testutil.NewPortfolioFund(product.PortfolioID).Build(t, db)
	testutil.CreateValuation(t, db, fund.ID, "2024-01", 5000, "2024-01-31")

	svc := testutil.NewTestReportService(t, db, 8)

	payload, err := svc.Generate(context.Background(), service.ReportRequest{
		ClientGroupIDs: []string{group.ID},
	})
	require.NoError(t, err)

	require.Len(t, payload.Products, 1)
	assert.Nil(t, payload.Products[0].IRR)
	assert.Nil(t, payload.TotalIRR)
	assert.Equal(t, 5000.0, payload.TotalValuation)
}

// TestReportService_Generate_PersistsOnlyWholePortfolio verifies the
// persistence boundary end to end: after a run, only the per-product
// whole-portfolio figure is stored, never the report-wide total.
func TestReportService_Generate_PersistsOnlyWholePortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	group := testutil.NewClientGroup().Build(t, db)
	product := testutil.NewProduct(group.ID).Build(t, db)

	fund := testutil.NewPortfolioFund(product.PortfolioID).Build(t, db)
	testutil.CreateActivity(t, db, fund.ID, "2023-01-01", model.ActivityInvestment, 1000)
	testutil.CreateValuation(t, db, fund.ID, "2024-01", 2000, "2024-01-31")

	svc := testutil.NewTestReportService(t, db, 8)

	payload, err := svc.Generate(context.Background(), service.ReportRequest{
		ProductIDs: []string{product.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, payload.Products[0].IRR)

	// Exactly one stored row: the product's portfolio.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM irr_value`).Scan(&count); err != nil {
		t.Fatalf("Failed to count stored IRR rows: %v", err)
	}
	assert.Equal(t, 1, count)

	var storedFor string
	if err := db.QueryRow(`SELECT portfolio_id FROM irr_value`).Scan(&storedFor); err != nil {
		t.Fatalf("Failed to read stored IRR row: %v", err)
	}
	assert.Equal(t, product.PortfolioID, storedFor)
}
