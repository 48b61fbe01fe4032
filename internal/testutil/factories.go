package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/advisorly/review-engine-backend/internal/model"
)

// ClientGroupBuilder provides a fluent interface for creating test client groups.
//
// Example usage:
//
//	// Simple creation with defaults
//	group := testutil.NewClientGroup().Build(t, db)
//
//	// Customized group
//	group := testutil.NewClientGroup().
//	    WithName("Smith Family").
//	    WithAdvisor("A. Advisor").
//	    Build(t, db)
type ClientGroupBuilder struct {
	ID      string
	Name    string
	Advisor string
	Status  string
}

// NewClientGroup creates a ClientGroupBuilder with sensible defaults.
func NewClientGroup() *ClientGroupBuilder {
	return &ClientGroupBuilder{
		ID:      MakeID(),
		Name:    MakeName("Test Group"),
		Advisor: "Test Advisor",
		Status:  "active",
	}
}

// WithID sets a custom ID.
func (b *ClientGroupBuilder) WithID(id string) *ClientGroupBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *ClientGroupBuilder) WithName(name string) *ClientGroupBuilder {
	b.Name = name
	return b
}

// WithAdvisor sets a custom advisor.
func (b *ClientGroupBuilder) WithAdvisor(advisor string) *ClientGroupBuilder {
	b.Advisor = advisor
	return b
}

// Build creates the client group in the database and returns it.
func (b *ClientGroupBuilder) Build(t *testing.T, db *sql.DB) model.ClientGroup {
	t.Helper()

	query := `
		INSERT INTO client_group (id, name, advisor, status)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Advisor, b.Status)
	if err != nil {
		t.Fatalf("Failed to create test client group: %v", err)
	}

	return model.ClientGroup{
		ID:      b.ID,
		Name:    b.Name,
		Advisor: b.Advisor,
		Status:  b.Status,
	}
}

// ProductBuilder provides a fluent interface for creating test products.
//
// Example usage:
//
//	product := testutil.NewProduct(group.ID).
//	    WithName("Pension Plan").
//	    WithProvider("Acme Provider").
//	    Build(t, db)
type ProductBuilder struct {
	ID            string
	Name          string
	Type          string
	Status        string
	ClientGroupID string
	Provider      string
	PortfolioID   string
	PlanNumber    string
	OwnerName     string
}

// NewProduct creates a ProductBuilder with sensible defaults. Every product
// gets its own portfolio id so holdings can be attached immediately.
func NewProduct(clientGroupID string) *ProductBuilder {
	return &ProductBuilder{
		ID:            MakeID(),
		Name:          MakeName("Test Product"),
		Type:          "Pension",
		Status:        model.ProductStatusActive,
		ClientGroupID: clientGroupID,
		Provider:      "Test Provider",
		PortfolioID:   MakeID(),
		PlanNumber:    "PLAN-0001",
	}
}

// WithID sets a custom ID.
func (b *ProductBuilder) WithID(id string) *ProductBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.Name = name
	return b
}

// WithType sets a custom product type.
func (b *ProductBuilder) WithType(productType string) *ProductBuilder {
	b.Type = productType
	return b
}

// WithProvider sets a custom provider.
func (b *ProductBuilder) WithProvider(provider string) *ProductBuilder {
	b.Provider = provider
	return b
}

// WithPortfolioID sets a custom portfolio id.
func (b *ProductBuilder) WithPortfolioID(portfolioID string) *ProductBuilder {
	b.PortfolioID = portfolioID
	return b
}

// WithOwnerName sets the legacy flat owner name string.
func (b *ProductBuilder) WithOwnerName(ownerName string) *ProductBuilder {
	b.OwnerName = ownerName
	return b
}

// Inactive marks the product as inactive.
func (b *ProductBuilder) Inactive() *ProductBuilder {
	b.Status = model.ProductStatusInactive
	return b
}

// Build creates the product in the database and returns it.
func (b *ProductBuilder) Build(t *testing.T, db *sql.DB) model.Product {
	t.Helper()

	query := `
		INSERT INTO product (id, name, type, status, client_group_id, provider, portfolio_id, plan_number, owner_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Type, b.Status, b.ClientGroupID,
		b.Provider, b.PortfolioID, b.PlanNumber, b.OwnerName)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return model.Product{
		ID:            b.ID,
		Name:          b.Name,
		Type:          b.Type,
		Status:        b.Status,
		ClientGroupID: b.ClientGroupID,
		Provider:      b.Provider,
		PortfolioID:   b.PortfolioID,
		PlanNumber:    b.PlanNumber,
		OwnerName:     b.OwnerName,
	}
}

// CreateProductOwner attaches a structured owner to a product.
//
// Example usage:
//
//	testutil.CreateProductOwner(t, db, product.ID, "Jane", "Smith", "", 0)
//	testutil.CreateProductOwner(t, db, product.ID, "Jonathan", "Smith", "Jon", 1)
func CreateProductOwner(t *testing.T, db *sql.DB, productID, firstName, surname, knownAs string, displayOrder int) model.ProductOwner {
	t.Helper()

	owner := model.ProductOwner{
		ID:           MakeID(),
		ProductID:    productID,
		FirstName:    firstName,
		Surname:      surname,
		KnownAs:      knownAs,
		DisplayOrder: displayOrder,
	}

	query := `
		INSERT INTO product_owner (id, product_id, first_name, surname, known_as, display_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, owner.ID, owner.ProductID, owner.FirstName,
		owner.Surname, owner.KnownAs, owner.DisplayOrder)
	if err != nil {
		t.Fatalf("Failed to create test product owner: %v", err)
	}

	return owner
}

// PortfolioFundBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	fund := testutil.NewPortfolioFund(product.PortfolioID).
//	    WithFundName("Global Equity").
//	    WithRiskFactor(5.5).
//	    Build(t, db)
type PortfolioFundBuilder struct {
	ID          string
	PortfolioID string
	FundID      string
	FundName    string
	RiskFactor  *float64
	Status      string
	EndDate     *time.Time
}

// NewPortfolioFund creates a PortfolioFundBuilder with sensible defaults.
func NewPortfolioFund(portfolioID string) *PortfolioFundBuilder {
	return &PortfolioFundBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		FundID:      MakeID(),
		FundName:    MakeName("Test Fund"),
		Status:      model.FundStatusActive,
	}
}

// WithID sets a custom ID.
func (b *PortfolioFundBuilder) WithID(id string) *PortfolioFundBuilder {
	b.ID = id
	return b
}

// WithFundID sets a custom fund id.
func (b *PortfolioFundBuilder) WithFundID(fundID string) *PortfolioFundBuilder {
	b.FundID = fundID
	return b
}

// WithFundName sets a custom fund name.
func (b *PortfolioFundBuilder) WithFundName(name string) *PortfolioFundBuilder {
	b.FundName = name
	return b
}

// WithRiskFactor sets the fund's risk factor.
func (b *PortfolioFundBuilder) WithRiskFactor(risk float64) *PortfolioFundBuilder {
	b.RiskFactor = &risk
	return b
}

// Inactive marks the holding as no longer active, ended on the given date.
func (b *PortfolioFundBuilder) Inactive(endDate time.Time) *PortfolioFundBuilder {
	b.Status = "inactive"
	b.EndDate = &endDate
	return b
}

// Build creates the portfolio fund in the database and returns it.
func (b *PortfolioFundBuilder) Build(t *testing.T, db *sql.DB) model.PortfolioFund {
	t.Helper()

	var endDate any
	if b.EndDate != nil {
		endDate = b.EndDate.Format("2006-01-02")
	}

	query := `
		INSERT INTO portfolio_fund (id, portfolio_id, fund_id, fund_name, risk_factor, status, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.FundID, b.FundName,
		b.RiskFactor, b.Status, endDate)
	if err != nil {
		t.Fatalf("Failed to create test portfolio fund: %v", err)
	}

	return model.PortfolioFund{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		FundID:      b.FundID,
		FundName:    b.FundName,
		RiskFactor:  b.RiskFactor,
		Status:      b.Status,
		EndDate:     b.EndDate,
	}
}

// CreateActivity inserts one ledger entry for a portfolio fund.
//
// Example usage:
//
//	testutil.CreateActivity(t, db, fund.ID, "2024-01-15", model.ActivityInvestment, 1000)
func CreateActivity(t *testing.T, db *sql.DB, portfolioFundID, date, activityType string, amount float64) model.ActivityRecord {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Invalid activity date %q: %v", date, err)
	}

	record := model.ActivityRecord{
		ID:              MakeID(),
		PortfolioFundID: portfolioFundID,
		Date:            parsed.UTC(),
		Type:            activityType,
		Amount:          amount,
	}

	query := `
		INSERT INTO activity (id, portfolio_fund_id, date, type, amount)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, record.ID, record.PortfolioFundID, date, record.Type, record.Amount)
	if err != nil {
		t.Fatalf("Failed to create test activity: %v", err)
	}

	return record
}

// CreateValuation inserts one month-end valuation for a portfolio fund.
// Month is the YYYY-MM key; date is the exact valuation date.
//
// Example usage:
//
//	testutil.CreateValuation(t, db, fund.ID, "2024-03", 12500, "2024-03-31")
func CreateValuation(t *testing.T, db *sql.DB, portfolioFundID, month string, value float64, date string) model.Valuation {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Invalid valuation date %q: %v", date, err)
	}

	valuation := model.Valuation{
		ID:              MakeID(),
		PortfolioFundID: portfolioFundID,
		Month:           month,
		Value:           value,
		Date:            parsed.UTC(),
	}

	query := `
		INSERT INTO valuation (id, portfolio_fund_id, month, value, value_date)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, valuation.ID, valuation.PortfolioFundID,
		valuation.Month, valuation.Value, date)
	if err != nil {
		t.Fatalf("Failed to create test valuation: %v", err)
	}

	return valuation
}

// CreateIRRHistory inserts one historical rate-of-return entry. A nil irr
// records a date where no figure could be computed.
//
// Example usage:
//
//	testutil.CreateIRRHistory(t, db, product.ID, model.IRRScopePortfolio, product.PortfolioID, "2024-03-31", testutil.Float64Ptr(4.2))
func CreateIRRHistory(t *testing.T, db *sql.DB, productID, scope, referenceID, date string, irr *float64) model.IRRRecord {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Invalid IRR history date %q: %v", date, err)
	}

	record := model.IRRRecord{
		ID:          MakeID(),
		ProductID:   productID,
		Scope:       scope,
		ReferenceID: referenceID,
		Date:        parsed.UTC(),
		IRR:         irr,
	}

	query := `
		INSERT INTO irr_history (id, product_id, scope, reference_id, date, irr)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, record.ID, record.ProductID, record.Scope,
		record.ReferenceID, date, record.IRR)
	if err != nil {
		t.Fatalf("Failed to create test IRR history: %v", err)
	}

	return record
}

// SetStoredIRR writes the canonical stored IRR for a portfolio.
func SetStoredIRR(t *testing.T, db *sql.DB, portfolioID string, irr float64) {
	t.Helper()

	query := `
		INSERT INTO irr_value (portfolio_id, irr, calculated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(portfolio_id) DO UPDATE SET irr = excluded.irr, calculated_at = excluded.calculated_at
	`

	_, err := db.Exec(query, portfolioID, irr, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to set stored IRR: %v", err)
	}
}
