package model

import "time"

// PreviousFundsName is the display name of the synthetic row that aggregates
// a product's no-longer-active holdings.
const PreviousFundsName = "Previous Funds"

// ActivityTotals holds the canonical cash-flow buckets for one aggregate.
// NetFlow is derived: investment + regular investment + tax uplift +
// product switch in + fund switch in - withdrawal - product switch out -
// fund switch out.
type ActivityTotals struct {
	Investment        float64 `json:"investment"`
	RegularInvestment float64 `json:"regularInvestment"`
	TaxUplift         float64 `json:"taxUplift"`
	ProductSwitchIn   float64 `json:"productSwitchIn"`
	ProductSwitchOut  float64 `json:"productSwitchOut"`
	FundSwitchIn      float64 `json:"fundSwitchIn"`
	FundSwitchOut     float64 `json:"fundSwitchOut"`
	Withdrawal        float64 `json:"withdrawal"`
	NetFlow           float64 `json:"netFlow"`
}

// Add accumulates another set of totals into the receiver, bucket by bucket.
func (t *ActivityTotals) Add(other ActivityTotals) {
	t.Investment += other.Investment
	t.RegularInvestment += other.RegularInvestment
	t.TaxUplift += other.TaxUplift
	t.ProductSwitchIn += other.ProductSwitchIn
	t.ProductSwitchOut += other.ProductSwitchOut
	t.FundSwitchIn += other.FundSwitchIn
	t.FundSwitchOut += other.FundSwitchOut
	t.Withdrawal += other.Withdrawal
	t.NetFlow += other.NetFlow
}

// ComputeNetFlow recalculates the derived net flow from the buckets.
func (t *ActivityTotals) ComputeNetFlow() {
	t.NetFlow = t.Investment + t.RegularInvestment + t.TaxUplift +
		t.ProductSwitchIn + t.FundSwitchIn -
		t.Withdrawal - t.ProductSwitchOut - t.FundSwitchOut
}

// FundSummary is the per-fund aggregate for one report run. A summary with
// IsPrevious set is the synthetic "Previous Funds" row standing in for all
// inactive holdings of a product; Merged then carries the original per-fund
// summaries it replaced.
type FundSummary struct {
	PortfolioFundID  string         `json:"portfolioFundId,omitempty"`
	FundID           string         `json:"fundId,omitempty"`
	FundName         string         `json:"fundName"`
	Status           string         `json:"status"`
	Totals           ActivityTotals `json:"totals"`
	CurrentValuation float64        `json:"currentValuation"`
	IRR              *float64       `json:"irr"`
	RiskFactor       *float64       `json:"riskFactor,omitempty"`
	StartDate        *time.Time     `json:"startDate,omitempty"`
	IsPrevious       bool           `json:"isPrevious,omitempty"`
	MergedCount      int            `json:"mergedCount,omitempty"`
	Merged           []FundSummary  `json:"merged,omitempty"`
}

// ProductSummary is the per-product aggregate. Its totals are the exact sum
// of its fund summaries' buckets, including the synthetic entry.
type ProductSummary struct {
	ProductID        string         `json:"productId"`
	ProductName      string         `json:"productName"`
	ProductType      string         `json:"productType"`
	Provider         string         `json:"provider,omitempty"`
	PlanNumber       string         `json:"planNumber,omitempty"`
	Status           string         `json:"status"`
	Totals           ActivityTotals `json:"totals"`
	CurrentValuation float64        `json:"currentValuation"`
	IRR              *float64       `json:"irr"`
	WeightedRisk     *float64       `json:"weightedRisk,omitempty"`
	StartDate        *time.Time     `json:"startDate,omitempty"`
	Funds            []FundSummary  `json:"funds"`
}

// ReportPayload is the terminal structure handed to the report renderer.
type ReportPayload struct {
	Products       []ProductSummary `json:"products"`
	TotalValuation float64          `json:"totalValuation"`
	TotalIRR       *float64         `json:"totalIrr"`
	EarliestDate   *time.Time       `json:"earliestDate,omitempty"`
	OwnerNames     []string         `json:"ownerNames"`
	TimePeriod     string           `json:"timePeriod"`
}
