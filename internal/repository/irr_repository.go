package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// IRRRepository provides access to the historical IRR series and the
// canonical stored portfolio IRR values.
type IRRRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewIRRRepository creates a new IRRRepository with the provided database connection.
func NewIRRRepository(db *sql.DB) *IRRRepository {
	return &IRRRepository{db: db}
}

// WithTx returns a new IRRRepository scoped to the provided transaction.
func (r *IRRRepository) WithTx(tx *sql.Tx) *IRRRepository {
	return &IRRRepository{db: r.db, tx: tx}
}

func (r *IRRRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetHistoryForProduct retrieves the combined fund-level and portfolio-level
// historical IRR series for one product, most recent first.
func (r *IRRRepository) GetHistoryForProduct(ctx context.Context, productID string) ([]model.IRRRecord, error) {
	if productID == "" {
		return nil, apperrors.ErrInvalidProductID
	}

	query := `
		SELECT id, product_id, scope, reference_id, date, irr
		FROM irr_history
		WHERE product_id = ?
		ORDER BY date DESC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query IRR history for product %s: %w", productID, err)
	}
	defer rows.Close()

	records := []model.IRRRecord{}
	for rows.Next() {
		var rec model.IRRRecord
		var date string
		var irr sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Scope, &rec.ReferenceID, &date, &irr); err != nil {
			return nil, fmt.Errorf("failed to scan IRR history record: %w", err)
		}
		rec.Date, err = ParseTime(date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse IRR history date: %w", err)
		}
		if irr.Valid {
			rec.IRR = &irr.Float64
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating IRR history: %w", err)
	}

	return records, nil
}

// GetStoredIRR retrieves the last-persisted canonical IRR for a portfolio.
// Returns ErrStoredIRRNotFound if no value has been stored.
func (r *IRRRepository) GetStoredIRR(ctx context.Context, portfolioID string) (float64, error) {
	if portfolioID == "" {
		return 0, apperrors.ErrInvalidPortfolioID
	}

	query := `SELECT irr FROM irr_value WHERE portfolio_id = ?`

	var irr float64
	err := r.getQuerier().QueryRowContext(ctx, query, portfolioID).Scan(&irr)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrStoredIRRNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query stored IRR: %w", err)
	}

	return irr, nil
}

// UpsertStoredIRR persists the canonical IRR for a portfolio, replacing any
// previous value. Only whole-portfolio current computations may call this.
func (r *IRRRepository) UpsertStoredIRR(ctx context.Context, portfolioID string, irr float64) error {
	if portfolioID == "" {
		return apperrors.ErrInvalidPortfolioID
	}

	query := `
		INSERT INTO irr_value (portfolio_id, irr, calculated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(portfolio_id) DO UPDATE SET irr = excluded.irr, calculated_at = excluded.calculated_at
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, portfolioID, irr, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert stored IRR: %w", err)
	}

	return nil
}
