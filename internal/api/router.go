package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/api/handlers"
	custommiddleware "github.com/advisorly/review-engine-backend/internal/api/middleware"
	"github.com/advisorly/review-engine-backend/internal/config"
	"github.com/advisorly/review-engine-backend/internal/repository"
	"github.com/advisorly/review-engine-backend/internal/service"
)

// Deps bundles the collaborators the router wires into handlers.
type Deps struct {
	SystemService     *service.SystemService
	SelectionService  *service.SelectionService
	DateService       *service.DateSelectionService
	ReportService     *service.ReportService
	CatalogueService  *service.CatalogueService
	ClientGroupRepo   *repository.ClientGroupRepository
	ProductRepo       *repository.ProductRepository
	PortfolioFundRepo *repository.PortfolioFundRepository
	Logger            zerolog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Deps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.SystemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/client-groups", func(r chi.Router) {
			clientGroupHandler := handlers.NewClientGroupHandler(deps.ClientGroupRepo)
			r.Get("/", clientGroupHandler.ClientGroups)
		})

		r.Route("/products", func(r chi.Router) {
			productHandler := handlers.NewProductHandler(deps.ProductRepo, deps.CatalogueService)
			r.Get("/", productHandler.Products)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", productHandler.Product)
			})
		})

		r.Route("/funds", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(deps.PortfolioFundRepo)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", fundHandler.PortfolioFund)
			})
		})

		r.Route("/report", func(r chi.Router) {
			r.Use(custommiddleware.APIKey(cfg.Auth.APIKey))

			reportHandler := handlers.NewReportHandler(deps.SelectionService, deps.DateService, deps.ReportService)
			r.Post("/selection", reportHandler.ResolveSelection)
			r.Post("/dates/discover", reportHandler.DiscoverDates)
			r.Post("/dates/select", reportHandler.SelectDates)
			r.Post("/dates/deselect", reportHandler.DeselectDates)
			r.Post("/dates/most-recent", reportHandler.SelectMostRecent)
			r.Post("/dates/cutoff", reportHandler.SetCutoff)
			r.Post("/generate", reportHandler.Generate)
		})
	})

	return r
}
