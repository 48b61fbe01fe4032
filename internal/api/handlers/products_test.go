package handlers_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/api/handlers"
	custommiddleware "github.com/advisorly/review-engine-backend/internal/api/middleware"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
	"github.com/advisorly/review-engine-backend/internal/service"
	"github.com/advisorly/review-engine-backend/internal/testutil"
)

func newCatalogueRouter(t *testing.T, db *sql.DB) http.Handler {
	t.Helper()

	productRepo := repository.NewProductRepository(db)
	portfolioFundRepo := repository.NewPortfolioFundRepository(db)
	catalogueService := service.NewCatalogueService(productRepo,
		cache.New(cache.NoExpiration, cache.NoExpiration), zerolog.Nop())

	productHandler := handlers.NewProductHandler(productRepo, catalogueService)
	fundHandler := handlers.NewFundHandler(portfolioFundRepo)

	r := chi.NewRouter()
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.Products)
		r.Route("/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", productHandler.Product)
		})
	})
	r.Route("/api/funds/{uuid}", func(r chi.Router) {
		r.Use(custommiddleware.ValidateUUIDMiddleware)
		r.Get("/", fundHandler.PortfolioFund)
	})
	return r
}

func getPath(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestProductDetail tests the single-product lookup endpoint.
//
// WHY: The selection screens fetch one product at a time when the adviser
// expands a row; the route must resolve owners and reject junk ids before
// the repository runs.
func TestProductDetail(t *testing.T) {
	t.Run("returns the product with its owners", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).WithName("Detail Pension").Build(t, db)
		testutil.CreateProductOwner(t, db, product.ID, "Jane", "Smith", "", 1)

		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/products/"+product.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.Product
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode product: %v", err)
		}
		if got.ID != product.ID || got.Name != "Detail Pension" {
			t.Errorf("Expected product %s 'Detail Pension', got %s '%s'", product.ID, got.ID, got.Name)
		}
		if len(got.Owners) != 1 {
			t.Errorf("Expected 1 owner, got %d", len(got.Owners))
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/products/"+testutil.MakeID())
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("malformed id is rejected before the repository runs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/products/not-a-uuid")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

// TestFundDetail tests the single-holding lookup endpoint.
func TestFundDetail(t *testing.T) {
	t.Run("returns the holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		group := testutil.NewClientGroup().Build(t, db)
		product := testutil.NewProduct(group.ID).Build(t, db)
		fund := testutil.NewPortfolioFund(product.PortfolioID).
			WithFundName("Detail Fund").
			WithRiskFactor(4.0).
			Build(t, db)

		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/funds/"+fund.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.PortfolioFund
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode fund: %v", err)
		}
		if got.ID != fund.ID || got.FundName != "Detail Fund" {
			t.Errorf("Expected fund %s 'Detail Fund', got %s '%s'", fund.ID, got.ID, got.FundName)
		}
		if got.RiskFactor == nil || *got.RiskFactor != 4.0 {
			t.Errorf("Expected risk factor 4.0, got %v", got.RiskFactor)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/funds/"+testutil.MakeID())
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("malformed id is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		router := newCatalogueRouter(t, db)

		w := getPath(router, "/api/funds/not-a-uuid")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
