// Package apperrors defines the error taxonomy shared across the engine.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrClientGroupNotFound indicates that a client group with the given ID does not exist.
	ErrClientGroupNotFound = errors.New("client group not found")

	// ErrProductNotFound indicates that a product with the given ID does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrPortfolioFundNotFound indicates that a portfolio-fund holding does not exist.
	ErrPortfolioFundNotFound = errors.New("portfolio fund not found")

	// ErrStoredIRRNotFound indicates that no canonical IRR has been persisted for a portfolio.
	ErrStoredIRRNotFound = errors.New("stored IRR not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidClientGroupID indicates a missing client group ID parameter.
	ErrInvalidClientGroupID = errors.New("client group ID is required")

	// ErrInvalidProductID indicates a missing product ID parameter.
	ErrInvalidProductID = errors.New("product ID is required")

	// ErrInvalidPortfolioID indicates a missing portfolio ID parameter.
	ErrInvalidPortfolioID = errors.New("portfolio ID is required")

	// ErrInvalidDate indicates a missing or malformed date parameter.
	ErrInvalidDate = errors.New("date parameter is required")

	// ErrDateCapExceeded indicates that accepting a date selection would push
	// the number of unique selected dates across all products over the cap.
	ErrDateCapExceeded = errors.New("historical date selection cap exceeded")

	// ErrDatePastCutoff indicates an attempt to select a date after the
	// chosen end-of-period cut-off.
	ErrDatePastCutoff = errors.New("date is after the selected cut-off")

	// ErrDateNotAvailable indicates an attempt to select a date the product
	// has no rate-of-return data for.
	ErrDateNotAvailable = errors.New("date not available for product")
)

// Selection errors are user-recoverable: the report cannot be generated
// until the product selection is corrected.
var (
	// ErrNoProductsSelected indicates that, after exclusions, no products
	// remain to report on.
	ErrNoProductsSelected = errors.New("no products selected for the report")

	// ErrDuplicateProductSelection indicates the same product was selected
	// more than once in the direct selection.
	ErrDuplicateProductSelection = errors.New("product selected more than once")
)

// MissingValuation identifies one active fund lacking a valuation at or
// before the report cut-off.
type MissingValuation struct {
	ProductName string
	FundName    string
}

func (m MissingValuation) String() string {
	return m.ProductName + " - " + m.FundName
}

// MissingValuationError reports every active fund that has no usable
// valuation for the chosen cut-off. It is raised once, after the full scan,
// so the user sees all affected funds at the same time.
type MissingValuationError struct {
	Missing []MissingValuation
}

func (e *MissingValuationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.String()
	}
	return fmt.Sprintf("no valuation found at or before the cut-off for: %s", strings.Join(names, "; "))
}

// Is lets errors.Is match any MissingValuationError instance.
func (e *MissingValuationError) Is(target error) bool {
	_, ok := target.(*MissingValuationError)
	return ok
}
