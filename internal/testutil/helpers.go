package testutil

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/irrcalc"
	"github.com/advisorly/review-engine-backend/internal/repository"
	"github.com/advisorly/review-engine-backend/internal/service"
)

// NewTestSelectionService creates a SelectionService over a fresh cache with
// a short debounce suitable for tests.
func NewTestSelectionService(t *testing.T, db *sql.DB) *service.SelectionService {
	t.Helper()

	clientGroupRepo := repository.NewClientGroupRepository(db)
	productRepo := repository.NewProductRepository(db)
	groupCache := cache.New(cache.NoExpiration, cache.NoExpiration)

	svc := service.NewSelectionService(
		clientGroupRepo,
		productRepo,
		groupCache,
		10*time.Millisecond,
		zerolog.Nop(),
	)
	t.Cleanup(svc.Close)
	return svc
}

// NewTestIRRService creates an IRRService backed by the in-process computer.
func NewTestIRRService(t *testing.T, db *sql.DB) *service.IRRService {
	t.Helper()

	activityRepo := repository.NewActivityRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	irrRepo := repository.NewIRRRepository(db)
	computer := irrcalc.NewComputer(activityRepo, valuationRepo, irrRepo, zerolog.Nop())

	return service.NewIRRService(
		computer,
		irrRepo,
		cache.New(cache.NoExpiration, cache.NoExpiration),
		zerolog.Nop(),
	)
}

// NewTestIRRServiceWithComputer creates an IRRService over a caller-supplied
// computer, typically a FakeIRRComputer.
func NewTestIRRServiceWithComputer(t *testing.T, db *sql.DB, computer service.IRRComputer) *service.IRRService {
	t.Helper()

	irrRepo := repository.NewIRRRepository(db)

	return service.NewIRRService(
		computer,
		irrRepo,
		cache.New(cache.NoExpiration, cache.NoExpiration),
		zerolog.Nop(),
	)
}

// NewTestDateSelectionService creates a DateSelectionService with the given
// unique-date cap, backed by the real history source.
func NewTestDateSelectionService(t *testing.T, db *sql.DB, dateCap int) *service.DateSelectionService {
	t.Helper()

	irrService := NewTestIRRService(t, db)
	return service.NewDateSelectionService(irrService, dateCap, zerolog.Nop())
}

// NewTestReportService wires the full report pipeline over the test database.
func NewTestReportService(t *testing.T, db *sql.DB, dateCap int) *service.ReportService {
	t.Helper()

	portfolioFundRepo := repository.NewPortfolioFundRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	valuationRepo := repository.NewValuationRepository(db)

	selectionService := NewTestSelectionService(t, db)
	irrService := NewTestIRRService(t, db)
	dateService := service.NewDateSelectionService(irrService, dateCap, zerolog.Nop())
	aggregationService := service.NewAggregationService(irrService, zerolog.Nop())

	return service.NewReportService(
		selectionService,
		dateService,
		aggregationService,
		irrService,
		portfolioFundRepo,
		activityRepo,
		valuationRepo,
		zerolog.Nop(),
	)
}

// FakeIRRCall records the arguments of one ComputeIRR invocation.
type FakeIRRCall struct {
	PortfolioID      string
	PortfolioFundIDs []string
	AsOf             *time.Time
	StoreResult      bool
}

// FakeIRRComputer is a canned service.IRRComputer for tests that want to
// observe persistence decisions without exercising the real math.
type FakeIRRComputer struct {
	mu     sync.Mutex
	Result float64
	Err    error
	Stored map[string]float64

	Calls []FakeIRRCall
}

// ComputeIRR records the call and returns the canned result.
func (f *FakeIRRComputer) ComputeIRR(_ context.Context, portfolioID string, portfolioFundIDs []string, asOf *time.Time, storeResult bool) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, FakeIRRCall{
		PortfolioID:      portfolioID,
		PortfolioFundIDs: portfolioFundIDs,
		AsOf:             asOf,
		StoreResult:      storeResult,
	})

	if f.Err != nil {
		return 0, f.Err
	}
	if storeResult && portfolioID != "" {
		if f.Stored == nil {
			f.Stored = make(map[string]float64)
		}
		f.Stored[portfolioID] = f.Result
	}
	return f.Result, nil
}

// StoredIRR returns the canned stored value, or nil when none is set.
func (f *FakeIRRComputer) StoredIRR(_ context.Context, portfolioID string) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.Stored[portfolioID]; ok {
		return &v, nil
	}
	return nil, nil
}

// MakeID generates a unique identifier for test entities.
func MakeID() string {
	return uuid.New().String()
}

// MakeName generates a unique display name for testing.
//
// Example usage:
//
//	name := testutil.MakeName("Test Product")
//	// Returns: "Test Product A1B2C3"
func MakeName(base string) string {
	if base == "" {
		base = "Test"
	}
	return base + " " + randomAlphanumeric(6)
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Date builds a UTC midnight time from year, month and day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func randomAlphanumeric(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}
