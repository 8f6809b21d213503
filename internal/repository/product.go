package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/browser/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// ProductRepository records snapshots of products as they were served by the catalog.
type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveProduct(ctx context.Context, product *domain.Product) error
}

// execer is the part of *pgxpool.Pool the repository needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type productRepository struct {
	db  execer
	now func() time.Time
}

func NewProductRepository(db execer) ProductRepository {
	return &productRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *productRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS product_snapshots (
		id         TEXT PRIMARY KEY,
		category   TEXT NOT NULL,
		data       JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create product_snapshots table: %w", err)
	}
	return nil
}

func (r *productRepository) SaveProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product %s: %w", product.ID, err)
	}

	query := `
	INSERT INTO product_snapshots (id, category, data, fetched_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id)
	DO UPDATE SET category = $2, data = $3, fetched_at = $4`
	_, err = r.db.Exec(ctx, query, product.ID, product.Category, data, r.now())
	if err != nil {
		return fmt.Errorf("failed to save product snapshot: %w", err)
	}

	return nil
}
