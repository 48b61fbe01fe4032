package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// ActivityRepository provides read access to the activity ledger.
type ActivityRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewActivityRepository creates a new ActivityRepository with the provided database connection.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a new ActivityRepository scoped to the provided transaction.
func (r *ActivityRepository) WithTx(tx *sql.Tx) *ActivityRepository {
	return &ActivityRepository{db: r.db, tx: tx}
}

func (r *ActivityRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetActivities retrieves the full ledger for one portfolio fund, oldest first.
func (r *ActivityRepository) GetActivities(ctx context.Context, portfolioFundID string) ([]model.ActivityRecord, error) {
	if portfolioFundID == "" {
		return nil, apperrors.ErrEmptyID
	}
	return r.getActivitiesWhere(ctx, "portfolio_fund_id = ?", portfolioFundID)
}

// GetActivitiesForFunds retrieves the ledgers for a set of portfolio funds in
// one batch, oldest first, grouped by portfolio fund id.
func (r *ActivityRepository) GetActivitiesForFunds(ctx context.Context, portfolioFundIDs []string) (map[string][]model.ActivityRecord, error) {
	byFund := make(map[string][]model.ActivityRecord)
	if len(portfolioFundIDs) == 0 {
		return byFund, nil
	}

	records, err := r.getActivitiesWhere(ctx,
		"portfolio_fund_id IN ("+placeholders(len(portfolioFundIDs))+")",
		toAnySlice(portfolioFundIDs)...)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		byFund[rec.PortfolioFundID] = append(byFund[rec.PortfolioFundID], rec)
	}
	return byFund, nil
}

func (r *ActivityRepository) getActivitiesWhere(ctx context.Context, where string, args ...any) ([]model.ActivityRecord, error) {
	//#nosec G202 -- Safe: where clauses are built from fixed strings and generated placeholders
	query := `
		SELECT id, portfolio_fund_id, date, type, amount
		FROM activity
		WHERE ` + where + `
		ORDER BY date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	records := []model.ActivityRecord{}
	for rows.Next() {
		var rec model.ActivityRecord
		var date string
		if err := rows.Scan(&rec.ID, &rec.PortfolioFundID, &date, &rec.Type, &rec.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		rec.Date, err = ParseTime(date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse activity date: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return records, nil
}
