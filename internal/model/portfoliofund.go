package model

import "time"

// Portfolio fund statuses.
const (
	FundStatusActive = "active"
)

// PortfolioFund represents one holding instance inside a portfolio.
type PortfolioFund struct {
	ID          string     `json:"id"`
	PortfolioID string     `json:"portfolioId"`
	FundID      string     `json:"fundId"`
	FundName    string     `json:"fundName"`
	RiskFactor  *float64   `json:"riskFactor,omitempty"`
	Status      string     `json:"status"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// IsActive reports whether the holding is still active.
func (pf PortfolioFund) IsActive() bool {
	return pf.Status == FundStatusActive
}
