package model

// Product statuses as stored in the product table.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product represents a product from the database. Products are created and
// updated by external CRUD surfaces; the engine only reads them.
type Product struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	ClientGroupID string         `json:"clientGroupId"`
	Provider      string         `json:"provider"`
	PortfolioID   string         `json:"portfolioId"`
	PlanNumber    string         `json:"planNumber"`
	OwnerName     string         `json:"ownerName,omitempty"` // legacy flat name string
	Owners        []ProductOwner `json:"owners,omitempty"`
}

// ProductOwner is the structured per-owner identity attached to a product.
// The KnownAs alias, when present, is preferred over the formal name.
type ProductOwner struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	FirstName    string `json:"firstName"`
	Surname      string `json:"surname"`
	KnownAs      string `json:"knownAs,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// DisplayName returns the owner's preferred display name: the known-as
// alias if set, otherwise "FirstName Surname".
func (o ProductOwner) DisplayName() string {
	if o.KnownAs != "" {
		return o.KnownAs
	}
	if o.FirstName == "" {
		return o.Surname
	}
	if o.Surname == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.Surname
}

// Provenance records why a product appears in the related-product set:
// a direct pick, membership in one or more selected client groups, or both.
type Provenance struct {
	Direct       bool     `json:"direct"`
	ClientGroups []string `json:"clientGroups,omitempty"`
}
