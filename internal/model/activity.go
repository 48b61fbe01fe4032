package model

import "time"

// Activity types as stored in the activity ledger. The set is closed;
// anything else falls through classification as unrecognised.
const (
	ActivityInvestment        = "Investment"
	ActivityRegularInvestment = "RegularInvestment"
	ActivityTaxUplift         = "TaxUplift"
	ActivityProductSwitchIn   = "ProductSwitchIn"
	ActivityProductSwitchOut  = "ProductSwitchOut"
	ActivitySwitchIn          = "SwitchIn"
	ActivityFundSwitchIn      = "FundSwitchIn"
	ActivitySwitchOut         = "SwitchOut"
	ActivityFundSwitchOut     = "FundSwitchOut"
	ActivityWithdrawal        = "Withdrawal"
)

// ActivityRecord is one append-only ledger entry for a portfolio fund.
type ActivityRecord struct {
	ID              string    `json:"id"`
	PortfolioFundID string    `json:"portfolioFundId"`
	Date            time.Time `json:"date"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
}
