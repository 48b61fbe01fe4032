package model

import "time"

// IRR history scopes.
const (
	IRRScopeFund      = "fund"
	IRRScopePortfolio = "portfolio"
)

// IRRRecord is one historical rate-of-return entry for a fund or portfolio.
// Series are conventionally ordered most-recent-first.
type IRRRecord struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Scope       string    `json:"scope"` // fund or portfolio
	ReferenceID string    `json:"referenceId"`
	Date        time.Time `json:"date"`
	IRR         *float64  `json:"irr"`
}
