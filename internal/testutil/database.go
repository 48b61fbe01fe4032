package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Client group table
		CREATE TABLE IF NOT EXISTS client_group (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			advisor VARCHAR(100),
			status VARCHAR(10) NOT NULL DEFAULT 'active'
		);

		-- Product table
		CREATE TABLE IF NOT EXISTS product (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			type VARCHAR(50) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			client_group_id VARCHAR(36) NOT NULL,
			provider VARCHAR(100),
			portfolio_id VARCHAR(36),
			plan_number VARCHAR(50),
			owner_name VARCHAR(200),
			FOREIGN KEY(client_group_id) REFERENCES client_group(id) ON DELETE CASCADE
		);

		-- Structured product owners
		CREATE TABLE IF NOT EXISTS product_owner (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			product_id VARCHAR(36) NOT NULL,
			first_name VARCHAR(100),
			surname VARCHAR(100),
			known_as VARCHAR(100),
			display_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(product_id) REFERENCES product(id) ON DELETE CASCADE
		);

		-- Portfolio holdings
		CREATE TABLE IF NOT EXISTS portfolio_fund (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			fund_id VARCHAR(36) NOT NULL,
			fund_name VARCHAR(100) NOT NULL,
			risk_factor REAL,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			end_date DATE
		);

		-- Activity ledger
		CREATE TABLE IF NOT EXISTS activity (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_fund_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			type VARCHAR(30) NOT NULL,
			amount DECIMAL(20,2) NOT NULL,
			FOREIGN KEY(portfolio_fund_id) REFERENCES portfolio_fund(id) ON DELETE CASCADE
		);

		-- Monthly valuations
		CREATE TABLE IF NOT EXISTS valuation (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_fund_id VARCHAR(36) NOT NULL,
			month VARCHAR(7) NOT NULL,
			value DECIMAL(20,2) NOT NULL,
			value_date DATE NOT NULL,
			FOREIGN KEY(portfolio_fund_id) REFERENCES portfolio_fund(id) ON DELETE CASCADE
		);

		-- Canonical stored IRR per portfolio
		CREATE TABLE IF NOT EXISTS irr_value (
			portfolio_id VARCHAR(36) NOT NULL PRIMARY KEY,
			irr DECIMAL(10,4) NOT NULL,
			calculated_at TIMESTAMP NOT NULL
		);

		-- Historical rate-of-return series
		CREATE TABLE IF NOT EXISTS irr_history (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			product_id VARCHAR(36) NOT NULL,
			scope VARCHAR(10) NOT NULL,
			reference_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			irr DECIMAL(10,4),
			FOREIGN KEY(product_id) REFERENCES product(id) ON DELETE CASCADE
		);
	`

	_, err := db.Exec(schema)
	return err
}
