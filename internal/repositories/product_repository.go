package repository

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils"
)

// ProductRepository is the durable store client. Unlike the cache, store
// errors propagate: a store failure is a genuine request failure.
type ProductRepository interface {
	Insert(ctx context.Context, name string, priceCents int64) (*models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	UpdateByID(ctx context.Context, id int64, name string, priceCents int64) (*models.Product, error)
}

type productRepository struct {
	db *Database
}

func NewProductRepo(db *Database) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Insert(ctx context.Context, name string, priceCents int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{Name: name, PriceCents: priceCents}

	query := `INSERT INTO products (name, price_cents)
			  VALUES ($1, $2)
			  RETURNING id, updated_at
	`

	err := r.db.Write.QueryRowContext(dbCtx, query, name, priceCents).Scan(&product.ID, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `SELECT id, name, price_cents, updated_at FROM products WHERE id = $1`

	err := r.db.Read.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.Name, &product.PriceCents, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying product %d: %w", id, err)
	}

	return product, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, price_cents, updated_at FROM products ORDER BY id`

	rows, err := r.db.Read.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		if err := rows.Scan(&product.ID, &product.Name, &product.PriceCents, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) UpdateByID(ctx context.Context, id int64, name string, priceCents int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{ID: id, Name: name, PriceCents: priceCents}

	query := `
		UPDATE products SET name = $1, price_cents = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.db.Write.QueryRowContext(dbCtx, query, name, priceCents, id).Scan(&product.UpdatedAt)
	if err != nil {
		// sql.ErrNoRows when no row matched; callers map it to Not-Found.
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}

	return product, nil
}
