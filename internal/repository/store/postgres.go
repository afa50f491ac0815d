package store

import (
	"context"
	"errors"
	"fmt"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/shipping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	const q = `
SELECT id, name, default_currency
FROM stores
WHERE id = $1
`
	var s domain.Store
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.DefaultCurrency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("store repo: not found", zap.String("store_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("store repo: get", zap.String("store_id", id), zap.Error(err))
		return nil, err
	}

	s.ShippingMethods = []domain.ShippingMethod{}
	s.PaymentMethods = []domain.PaymentMethod{}

	rows, err := r.pool.Query(ctx, `
SELECT code, name, is_active, tax_type
FROM store_shipping_methods
WHERE store_id = $1
ORDER BY position, code
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.ShippingMethod
		if err := rows.Scan(&m.Code, &m.Name, &m.IsActive, &m.TaxType); err != nil {
			return nil, err
		}
		s.ShippingMethods = append(s.ShippingMethods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	options := make(map[string][]shipping.FixedRateOption)
	rows, err = r.pool.Query(ctx, `
SELECT method_code, name, rate::text, discount_amount::text
FROM store_shipping_options
WHERE store_id = $1
ORDER BY method_code, position, name
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var code, rate, discount string
		var opt shipping.FixedRateOption
		if err := rows.Scan(&code, &opt.Name, &rate, &discount); err != nil {
			return nil, err
		}
		if opt.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("decode rate of %s/%s: %w", code, opt.Name, err)
		}
		if opt.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("decode discount of %s/%s: %w", code, opt.Name, err)
		}
		options[code] = append(options[code], opt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rates point back at their method, so calculators are bound only after
	// the slice has stopped growing.
	for i := range s.ShippingMethods {
		shipping.NewFixedRate(&s.ShippingMethods[i], options[s.ShippingMethods[i].Code]...)
	}

	rows, err = r.pool.Query(ctx, `
SELECT code, name, is_active
FROM store_payment_methods
WHERE store_id = $1
ORDER BY position, code
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.PaymentMethod
		if err := rows.Scan(&p.Code, &p.Name, &p.IsActive); err != nil {
			return nil, err
		}
		s.PaymentMethods = append(s.PaymentMethods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("store repo: get",
		zap.String("store_id", id),
		zap.Int("shipping_methods", len(s.ShippingMethods)),
		zap.Int("payment_methods", len(s.PaymentMethods)),
	)
	return &s, nil
}

// Upsert replaces the store row and all of its methods.
func (r *postgresRepo) Upsert(ctx context.Context, def Definition) error {
	if def.ID == "" {
		return domain.InvalidArgument("store id required")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `
INSERT INTO stores (id, name, default_currency)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    default_currency = EXCLUDED.default_currency
`
	if _, err := tx.Exec(ctx, upsert, def.ID, def.Name, def.DefaultCurrency); err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}
	for _, table := range []string{"store_shipping_methods", "store_payment_methods"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE store_id = $1`, def.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for i, m := range def.ShippingMethods {
		batch.Queue(`
INSERT INTO store_shipping_methods (store_id, code, name, is_active, tax_type, position)
VALUES ($1, $2, $3, $4, $5, $6)
`, def.ID, m.Code, m.Name, m.IsActive, m.TaxType, i)
		for j, opt := range m.Options {
			batch.Queue(`
INSERT INTO store_shipping_options (store_id, method_code, name, rate, discount_amount, position)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
`, def.ID, m.Code, opt.Name, opt.Rate.String(), opt.DiscountAmount.String(), j)
		}
	}
	for i, p := range def.PaymentMethods {
		batch.Queue(`
INSERT INTO store_payment_methods (store_id, code, name, is_active, position)
VALUES ($1, $2, $3, $4, $5)
`, def.ID, p.Code, p.Name, p.IsActive, i)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write store methods: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("store repo: upserted", zap.String("store_id", def.ID))
	return nil
}
