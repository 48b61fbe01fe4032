package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/advisorly/review-engine-backend/internal/model"
)

// ValuationRepository provides read access to the valuation table.
type ValuationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewValuationRepository creates a new ValuationRepository with the provided database connection.
func NewValuationRepository(db *sql.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// WithTx returns a new ValuationRepository scoped to the provided transaction.
func (r *ValuationRepository) WithTx(tx *sql.Tx) *ValuationRepository {
	return &ValuationRepository{db: r.db, tx: tx}
}

func (r *ValuationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetValuationsForFunds retrieves all valuations for a set of portfolio
// funds in one batch, oldest first, grouped by portfolio fund id.
func (r *ValuationRepository) GetValuationsForFunds(ctx context.Context, portfolioFundIDs []string) (map[string][]model.Valuation, error) {
	byFund := make(map[string][]model.Valuation)
	if len(portfolioFundIDs) == 0 {
		return byFund, nil
	}

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT id, portfolio_fund_id, month, value, value_date
		FROM valuation
		WHERE portfolio_fund_id IN (` + placeholders(len(portfolioFundIDs)) + `)
		ORDER BY value_date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, toAnySlice(portfolioFundIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.Valuation
		var date string
		if err := rows.Scan(&v.ID, &v.PortfolioFundID, &v.Month, &v.Value, &date); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		v.Date, err = ParseTime(date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse valuation date: %w", err)
		}
		byFund[v.PortfolioFundID] = append(byFund[v.PortfolioFundID], v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuations: %w", err)
	}

	return byFund, nil
}
