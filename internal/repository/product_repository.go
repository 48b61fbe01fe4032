package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
	"github.com/advisorly/review-engine-backend/internal/model"
)

// ProductRepository provides read access to the product and product_owner tables.
type ProductRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewProductRepository creates a new ProductRepository with the provided database connection.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a new ProductRepository scoped to the provided transaction.
func (r *ProductRepository) WithTx(tx *sql.Tx) *ProductRepository {
	return &ProductRepository{db: r.db, tx: tx}
}

func (r *ProductRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const productColumns = `
	p.id, p.name, p.type, p.status, p.client_group_id,
	COALESCE(p.provider, ''), COALESCE(p.portfolio_id, ''),
	COALESCE(p.plan_number, ''), COALESCE(p.owner_name, '')
`

func scanProduct(rows *sql.Rows) (model.Product, error) {
	var p model.Product
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.Status,
		&p.ClientGroupID,
		&p.Provider,
		&p.PortfolioID,
		&p.PlanNumber,
		&p.OwnerName,
	)
	return p, err
}

// GetAllProducts retrieves the full product catalogue with owners attached.
func (r *ProductRepository) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM product p ORDER BY p.name ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return r.attachOwners(ctx, products)
}

// GetProductsByClientGroup retrieves all products owned by one client group.
func (r *ProductRepository) GetProductsByClientGroup(ctx context.Context, groupID string) ([]model.Product, error) {
	if groupID == "" {
		return nil, apperrors.ErrInvalidClientGroupID
	}

	query := `SELECT ` + productColumns + ` FROM product p WHERE p.client_group_id = ? ORDER BY p.name ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for client group %s: %w", groupID, err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return r.attachOwners(ctx, products)
}

// GetProductsByIDs retrieves products for an explicit id list.
// Missing ids are skipped, not errors; callers compare lengths if they care.
func (r *ProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `SELECT ` + productColumns + ` FROM product p WHERE p.id IN (` + placeholders(len(ids)) + `)`

	rows, err := r.getQuerier().QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return r.attachOwners(ctx, products)
}

// GetProduct retrieves a single product by its ID.
// Returns ErrProductNotFound if no record with the given ID exists.
func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, apperrors.ErrInvalidProductID
	}

	products, err := r.GetProductsByIDs(ctx, []string{productID})
	if err != nil {
		return model.Product{}, err
	}
	if len(products) == 0 {
		return model.Product{}, apperrors.ErrProductNotFound
	}
	return products[0], nil
}

// attachOwners loads product_owner rows for the given products and attaches
// them in display order.
func (r *ProductRepository) attachOwners(ctx context.Context, products []model.Product) ([]model.Product, error) {
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT id, product_id, COALESCE(first_name, ''), COALESCE(surname, ''), COALESCE(known_as, ''), display_order
		FROM product_owner
		WHERE product_id IN (` + placeholders(len(ids)) + `)
		ORDER BY product_id, display_order ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o model.ProductOwner
		if err := rows.Scan(&o.ID, &o.ProductID, &o.FirstName, &o.Surname, &o.KnownAs, &o.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan product owner: %w", err)
		}
		i, ok := index[o.ProductID]
		if !ok {
			continue
		}
		products[i].Owners = append(products[i].Owners, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product owners: %w", err)
	}

	return products, nil
}
