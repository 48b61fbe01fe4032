package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// PortfolioFundRepository provides read access to the portfolio_fund table.
type PortfolioFundRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioFundRepository creates a new PortfolioFundRepository with the provided database connection.
func NewPortfolioFundRepository(db *sql.DB) *PortfolioFundRepository {
	return &PortfolioFundRepository{db: db}
}

// WithTx returns a new PortfolioFundRepository scoped to the provided transaction.
func (r *PortfolioFundRepository) WithTx(tx *sql.Tx) *PortfolioFundRepository {
	return &PortfolioFundRepository{db: r.db, tx: tx}
}

func (r *PortfolioFundRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanPortfolioFund(rows *sql.Rows) (model.PortfolioFund, error) {
	var pf model.PortfolioFund
	var risk sql.NullFloat64
	var endDate sql.NullString

	err := rows.Scan(
		&pf.ID,
		&pf.PortfolioID,
		&pf.FundID,
		&pf.FundName,
		&risk,
		&pf.Status,
		&endDate,
	)
	if err != nil {
		return model.PortfolioFund{}, err
	}

	if risk.Valid {
		pf.RiskFactor = &risk.Float64
	}
	if endDate.Valid && endDate.String != "" {
		t, err := ParseTime(endDate.String)
		if err != nil {
			return model.PortfolioFund{}, err
		}
		pf.EndDate = &t
	}

	return pf, nil
}

// GetPortfolioFunds retrieves all holdings for a portfolio, active and not.
func (r *PortfolioFundRepository) GetPortfolioFunds(ctx context.Context, portfolioID string) ([]model.PortfolioFund, error) {
	if portfolioID == "" {
		return nil, apperrors.ErrInvalidPortfolioID
	}

	query := `
		SELECT id, portfolio_id, fund_id, fund_name, risk_factor, status, end_date
		FROM portfolio_fund
		WHERE portfolio_id = ?
		ORDER BY fund_name ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio funds (portfolio_id=%s): %w", portfolioID, err)
	}
	defer rows.Close()

	funds := []model.PortfolioFund{}
	for rows.Next() {
		pf, err := scanPortfolioFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio fund: %w", err)
		}
		funds = append(funds, pf)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio funds: %w", err)
	}

	return funds, nil
}

// GetPortfolioFund retrieves a single holding by its ID.
// Returns ErrPortfolioFundNotFound if no record with the given ID exists.
func (r *PortfolioFundRepository) GetPortfolioFund(ctx context.Context, pfID string) (model.PortfolioFund, error) {
	if pfID == "" {
		return model.PortfolioFund{}, apperrors.ErrEmptyID
	}

	query := `
		SELECT id, portfolio_id, fund_id, fund_name, risk_factor, status, end_date
		FROM portfolio_fund
		WHERE id = ?
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, pfID)
	if err != nil {
		return model.PortfolioFund{}, fmt.Errorf("failed to query portfolio fund: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.PortfolioFund{}, fmt.Errorf("failed to query portfolio fund: %w", err)
		}
		return model.PortfolioFund{}, apperrors.ErrPortfolioFundNotFound
	}

	pf, err := scanPortfolioFund(rows)
	if err != nil {
		return model.PortfolioFund{}, fmt.Errorf("failed to scan portfolio fund: %w", err)
	}

	return pf, nil
}
