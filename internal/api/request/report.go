package request

// ResolveSelectionRequest is the body for resolving a report selection.
type ResolveSelectionRequest struct {
	ClientGroupIDs     []string `json:"clientGroupIds"`
	ProductIDs         []string `json:"productIds"`
	ExcludedProductIDs []string `json:"excludedProductIds"`
}

// DiscoverDatesRequest is the body for discovering selectable historical dates.
type DiscoverDatesRequest struct {
	ProductIDs []string `json:"productIds"`
}

// SelectDatesRequest is the body for (de)selecting historical dates for one product.
type SelectDatesRequest struct {
	ProductID string   `json:"productId"`
	Dates     []string `json:"dates"`
}

// MostRecentDatesRequest is the body for selecting the N most recent dates globally.
type MostRecentDatesRequest struct {
	Count int `json:"count"`
}

// CutoffRequest is the body for setting or clearing the end-of-period cut-off.
type CutoffRequest struct {
	Date *string `json:"date"`
}

// GenerateReportRequest is the body for generating a review report.
type GenerateReportRequest struct {
	ClientGroupIDs     []string `json:"clientGroupIds"`
	ProductIDs         []string `json:"productIds"`
	ExcludedProductIDs []string `json:"excludedProductIds"`
	Cutoff             *string  `json:"cutoff,omitempty"`
	OwnerSelection     []string `json:"ownerSelection,omitempty"`
}
