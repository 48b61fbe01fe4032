package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// ClientGroupRepository provides read access to the client_group table.
type ClientGroupRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewClientGroupRepository creates a new ClientGroupRepository with the provided database connection.
func NewClientGroupRepository(db *sql.DB) *ClientGroupRepository {
	return &ClientGroupRepository{db: db}
}

// WithTx returns a new ClientGroupRepository scoped to the provided transaction.
func (r *ClientGroupRepository) WithTx(tx *sql.Tx) *ClientGroupRepository {
	return &ClientGroupRepository{db: r.db, tx: tx}
}

func (r *ClientGroupRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetClientGroups retrieves all client groups ordered by name.
func (r *ClientGroupRepository) GetClientGroups(ctx context.Context) ([]model.ClientGroup, error) {
	query := `
		SELECT id, name, COALESCE(advisor, ''), status
		FROM client_group
		ORDER BY name ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query client groups: %w", err)
	}
	defer rows.Close()

	groups := []model.ClientGroup{}

	for rows.Next() {
		var g model.ClientGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Advisor, &g.Status); err != nil {
			return nil, fmt.Errorf("failed to scan client group: %w", err)
		}
		groups = append(groups, g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client groups: %w", err)
	}

	return groups, nil
}

// GetClientGroup retrieves a single client group by its ID.
// Returns ErrClientGroupNotFound if no record with the given ID exists.
func (r *ClientGroupRepository) GetClientGroup(ctx context.Context, groupID string) (model.ClientGroup, error) {
	if groupID == "" {
		return model.ClientGroup{}, apperrors.ErrInvalidClientGroupID
	}

	query := `
		SELECT id, name, COALESCE(advisor, ''), status
		FROM client_group
		WHERE id = ?
	`

	var g model.ClientGroup
	err := r.getQuerier().QueryRowContext(ctx, query, groupID).Scan(
		&g.ID,
		&g.Name,
		&g.Advisor,
		&g.Status,
	)
	if err == sql.ErrNoRows {
		return model.ClientGroup{}, apperrors.ErrClientGroupNotFound
	}
	if err != nil {
		return model.ClientGroup{}, fmt.Errorf("failed to query client group: %w", err)
	}

	return g, nil
}
