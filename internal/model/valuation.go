package model

import "time"

// Valuation is one month-end valuation record for a portfolio fund.
// Multiple valuations exist per fund; the engine picks the one matching or
// most recently preceding a selected date.
type Valuation struct {
	ID              string    `json:"id"`
	PortfolioFundID string    `json:"portfolioFundId"`
	Month           string    `json:"month"` // YYYY-MM key
	Value           float64   `json:"value"`
	Date            time.Time `json:"date"` // exact valuation date
}
