package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/advisorly/review-engine-backend/internal/api"
	"github.com/advisorly/review-engine-backend/internal/config"
	"github.com/advisorly/review-engine-backend/internal/database"
	"github.com/advisorly/review-engine-backend/internal/irrcalc"
	"github.com/advisorly/review-engine-backend/internal/logging"
	"github.com/advisorly/review-engine-backend/internal/repository"
	"github.com/advisorly/review-engine-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	// Open database connection and run migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	clientGroupRepo := repository.NewClientGroupRepository(db)
	productRepo := repository.NewProductRepository(db)
	portfolioFundRepo := repository.NewPortfolioFundRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	irrRepo := repository.NewIRRRepository(db)

	// Session caches: one for resolved client-group memberships, one shared
	// by the IRR history and product catalogue lookups.
	groupCache := cache.New(cache.NoExpiration, cache.NoExpiration)
	sessionCache := cache.New(cache.NoExpiration, cache.NoExpiration)

	computer := irrcalc.NewComputer(activityRepo, valuationRepo, irrRepo, logger)

	// Create services
	systemService := service.NewSystemService(db)
	irrService := service.NewIRRService(computer, irrRepo, sessionCache, logger)
	selectionService := service.NewSelectionService(
		clientGroupRepo,
		productRepo,
		groupCache,
		cfg.Report.Debounce,
		logger,
	)
	defer selectionService.Close()

	dateService := service.NewDateSelectionService(irrService, cfg.Report.DateCap, logger)
	aggregationService := service.NewAggregationService(irrService, logger)
	reportService := service.NewReportService(
		selectionService,
		dateService,
		aggregationService,
		irrService,
		portfolioFundRepo,
		activityRepo,
		valuationRepo,
		logger,
	)

	catalogueService := service.NewCatalogueService(productRepo, sessionCache, logger)
	if err := catalogueService.Start(cfg.Jobs.CatalogueRefreshSpec); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start catalogue refresh job")
	}
	defer catalogueService.Stop()

	// Create router
	router := api.NewRouter(api.Deps{
		SystemService:     systemService,
		SelectionService:  selectionService,
		DateService:       dateService,
		ReportService:     reportService,
		CatalogueService:  catalogueService,
		ClientGroupRepo:   clientGroupRepo,
		ProductRepo:       productRepo,
		PortfolioFundRepo: portfolioFundRepo,
		Logger:            logger,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
