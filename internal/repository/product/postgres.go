package product

import (
	"context"
	"errors"
	"fmt"

	"cartbuilder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	const q = `
SELECT id, store_id, sku, name, price_cents, currency, created_at
FROM products
WHERE store_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Error("product repo: list", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.PriceCents, &p.Currency, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.String("store_id", storeID), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Product, error) {
	const q = `
SELECT id, store_id, sku, name, price_cents, currency, created_at
FROM products
WHERE store_id = $1 AND id = $2
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, storeID, id).Scan(&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.PriceCents, &p.Currency, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: not found", zap.String("store_id", storeID), zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("store_id", storeID), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or updates a product keyed by store and SKU.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, store_id, sku, name, price_cents, currency)
VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6)
ON CONFLICT (store_id, sku) DO UPDATE SET
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
RETURNING id, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.StoreID,
		product.SKU,
		product.Name,
		product.PriceCents,
		product.Currency,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("sku", product.SKU), zap.String("store_id", product.StoreID), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for sku=%s store_id=%s existing_id=%s requested_id=%s", product.SKU, product.StoreID, res.ID, product.ID)
	}
	r.logger.Debug("product repo: upserted", zap.String("sku", res.SKU), zap.String("id", res.ID))
	return &res, nil
}
