package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// historySource supplies the historical IRR series for one product.
// Satisfied by IRRService.
type historySource interface {
	History(ctx context.Context, productID string) ([]model.IRRRecord, error)
}

// DateSelectionService curates the set of historical dates for which
// rate-of-return figures may be shown. It unions available dates across
// products, holds per-product selections, and enforces a global cap on the
// number of unique dates selected across all products combined.
type DateSelectionService struct {
	history historySource
	logger  zerolog.Logger

	mu         sync.Mutex
	available  map[string]model.SelectedDate       // date key -> discovered date
	selections map[string]map[string]time.Time     // product id -> date key -> date
	cutoff     *time.Time
	cap        int
}

// NewDateSelectionService creates a controller with the given global
// unique-date cap.
func NewDateSelectionService(history historySource, dateCap int, logger zerolog.Logger) *DateSelectionService {
	return &DateSelectionService{
		history:    history,
		logger:     logger.With().Str("component", "dateselect").Logger(),
		available:  make(map[string]model.SelectedDate),
		selections: make(map[string]map[string]time.Time),
		cap:        dateCap,
	}
}

// Cap returns the configured global unique-date cap.
func (s *DateSelectionService) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cap
}

// DiscoverDates reads each product's historical IRR series (fund-level and
// portfolio-level combined) and unions all distinct dates. Each returned
// date carries the set of product ids that actually have data for it and
// its past-cutoff flag. The result is ordered most recent first.
func (s *DateSelectionService) DiscoverDates(ctx context.Context, productIDs []string) ([]model.SelectedDate, error) {
	discovered := make(map[string]model.SelectedDate)

	for _, productID := range productIDs {
		records, err := s.history.History(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to discover dates for product %s: %w", productID, err)
		}
		for _, rec := range records {
			key := rec.Date.Format(model.DateKeyFormat)
			d, ok := discovered[key]
			if !ok {
				d = model.NewSelectedDate(rec.Date)
			}
			d.ProductIDs[productID] = true
			discovered[key] = d
		}
	}

	s.mu.Lock()
	for key, d := range discovered {
		if existing, ok := s.available[key]; ok {
			for id := range existing.ProductIDs {
				d.ProductIDs[id] = true
			}
		}
		d.PastCutoff = s.isPastCutoffLocked(d.Date)
		s.available[key] = d
	}
	dates := s.availableDatesLocked()
	s.mu.Unlock()

	return dates, nil
}

// Select upserts dates into one product's selection. The addition is
// rejected when a date is unknown for the product, greyed out past the
// cut-off, or would push the global unique-date count over the cap.
// Re-selecting an already-selected date is a no-op.
func (s *DateSelectionService) Select(productID string, dates []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	additions := make(map[string]time.Time)
	for _, date := range dates {
		key := date.Format(model.DateKeyFormat)

		d, ok := s.available[key]
		if !ok || !d.ProductIDs[productID] {
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrDateNotAvailable, key, productID)
		}
		if d.PastCutoff {
			return fmt.Errorf("%w: %s", apperrors.ErrDatePastCutoff, key)
		}
		if _, selected := s.selections[productID][key]; selected {
			continue
		}
		additions[key] = d.Date
	}

	if len(additions) == 0 {
		return nil
	}

	// The cap bounds unique dates across every product's selection, so the
	// resulting global set is computed before accepting the addition.
	unique := s.uniqueSelectedKeysLocked()
	for key := range additions {
		unique[key] = true
	}
	if len(unique) > s.cap {
		return fmt.Errorf("%w: %d dates selected, cap is %d", apperrors.ErrDateCapExceeded, len(unique), s.cap)
	}

	if s.selections[productID] == nil {
		s.selections[productID] = make(map[string]time.Time)
	}
	for key, date := range additions {
		s.selections[productID][key] = date
	}

	return nil
}

// Deselect removes dates from one product's selection. Removals are always
// accepted; unknown dates are ignored.
func (s *DateSelectionService) Deselect(productID string, dates []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, date := range dates {
		delete(s.selections[productID], date.Format(model.DateKeyFormat))
	}
}

// SelectMostRecent replaces all selections with the n most recent unique
// dates available globally, then, per product, selects only the subset of
// those dates the product actually has data for. n is clamped to the cap.
func (s *DateSelectionService) SelectMostRecent(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.cap {
		n = s.cap
	}

	candidates := s.availableDatesLocked()
	selectable := candidates[:0:0]
	for _, d := range candidates {
		if !d.PastCutoff {
			selectable = append(selectable, d)
		}
	}
	if n < len(selectable) {
		selectable = selectable[:n]
	}

	s.selections = make(map[string]map[string]time.Time)
	for _, d := range selectable {
		key := d.Date.Format(model.DateKeyFormat)
		for productID := range d.ProductIDs {
			if s.selections[productID] == nil {
				s.selections[productID] = make(map[string]time.Time)
			}
			s.selections[productID][key] = d.Date
		}
	}
}

// SelectAll selects every available, non-greyed date, subject to the cap:
// the cap-many most recent unique dates win.
func (s *DateSelectionService) SelectAll() {
	s.SelectMostRecent(s.Cap())
}

// SetCutoff records the end-of-period cut-off. Every available date
// strictly after the cut-off becomes greyed out, and any previously
// selected date that is now greyed out is dropped from every product's
// selection. A nil cutoff clears the restriction.
func (s *DateSelectionService) SetCutoff(cutoff *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cutoff = cutoff

	for key, d := range s.available {
		d.PastCutoff = s.isPastCutoffLocked(d.Date)
		s.available[key] = d

		if d.PastCutoff {
			for productID := range s.selections {
				delete(s.selections[productID], key)
			}
		}
	}
}

// Cutoff returns the current cut-off date, or nil.
func (s *DateSelectionService) Cutoff() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cutoff
}

// TrimToCap enforces a cap over the accumulated selections, keeping the
// globally most recent unique dates and discarding the rest from every
// product's selection. Ties cannot occur: dates are unique by definition,
// so ordering by date alone is deterministic.
func (s *DateSelectionService) TrimToCap(dateCap int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cap = dateCap

	unique := s.uniqueSelectedDatesLocked()
	if len(unique) <= dateCap {
		return
	}

	s.logger.Debug().Int("selected", len(unique)).Int("cap", dateCap).Msg("trimming date selection to cap")

	keep := make(map[string]bool, dateCap)
	for _, date := range unique[:dateCap] {
		keep[date.Format(model.DateKeyFormat)] = true
	}

	for productID := range s.selections {
		for key := range s.selections[productID] {
			if !keep[key] {
				delete(s.selections[productID], key)
			}
		}
	}
}

// Selections returns a copy of every product's selected dates, most recent
// first.
func (s *DateSelectionService) Selections() map[string][]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]time.Time, len(s.selections))
	for productID, keys := range s.selections {
		if len(keys) == 0 {
			continue
		}
		dates := make([]time.Time, 0, len(keys))
		for _, date := range keys {
			dates = append(dates, date)
		}
		sortDatesDesc(dates)
		result[productID] = dates
	}
	return result
}

// UniqueSelectedDates returns the distinct dates selected across all
// products, most recent first.
func (s *DateSelectionService) UniqueSelectedDates() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniqueSelectedDatesLocked()
}

// GlobalUniqueCount returns the number of distinct dates currently selected
// across all products.
func (s *DateSelectionService) GlobalUniqueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uniqueSelectedKeysLocked())
}

// AvailableDates returns every discovered date, most recent first.
func (s *DateSelectionService) AvailableDates() []model.SelectedDate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableDatesLocked()
}

func (s *DateSelectionService) isPastCutoffLocked(date time.Time) bool {
	return s.cutoff != nil && date.After(*s.cutoff)
}

func (s *DateSelectionService) uniqueSelectedKeysLocked() map[string]bool {
	unique := make(map[string]bool)
	for _, keys := range s.selections {
		for key := range keys {
			unique[key] = true
		}
	}
	return unique
}

func (s *DateSelectionService) uniqueSelectedDatesLocked() []time.Time {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, keys := range s.selections {
		for key, date := range keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			dates = append(dates, date)
		}
	}
	sortDatesDesc(dates)
	return dates
}

func (s *DateSelectionService) availableDatesLocked() []model.SelectedDate {
	dates := make([]model.SelectedDate, 0, len(s.available))
	for _, d := range s.available {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Date.After(dates[j].Date)
	})
	return dates
}

// sortDatesDesc orders dates most recent first.
func sortDatesDesc(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
}
