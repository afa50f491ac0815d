package cart

import (
	"context"
	"fmt"
	"time"

	"cartbuilder/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cartColumns = `id, store_id, customer_id, customer_name, is_anonymous, name, currency, language_code, coupon, created_at, modified_at`

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

func (r *postgresRepo) Search(ctx context.Context, criteria domain.CartCriteria) ([]domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE store_id = $1 AND customer_id = $2 AND name = $3 AND currency = $4
ORDER BY created_at ASC, id ASC
`
	carts, err := r.queryCarts(ctx, q, criteria.StoreID, criteria.CustomerID, criteria.Name, criteria.Currency)
	if err != nil {
		r.logger.Error("cart repo: search", zap.String("store_id", criteria.StoreID), zap.String("customer_id", criteria.CustomerID), zap.Error(err))
		return nil, err
	}
	return carts, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids ...string) ([]domain.Cart, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = ANY($1)
ORDER BY created_at ASC, id ASC
`
	carts, err := r.queryCarts(ctx, q, ids)
	if err != nil {
		r.logger.Error("cart repo: get", zap.Strings("ids", ids), zap.Error(err))
		return nil, err
	}
	return carts, nil
}

func (r *postgresRepo) Save(ctx context.Context, carts ...*domain.Cart) error {
	if len(carts) == 0 {
		return nil
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// ids and timestamps are copied onto the caller's carts only once the
	// transaction has committed.
	var apply []func()
	for _, cart := range carts {
		if cart == nil {
			continue
		}
		fns, err := saveCart(ctx, tx, cart)
		if err != nil {
			r.logger.Error("cart repo: save", zap.String("cart_id", cart.ID), zap.Error(err))
			return err
		}
		apply = append(apply, fns...)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	for _, fn := range apply {
		fn()
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error("cart repo: delete", zap.Strings("ids", ids), zap.Error(err))
		return err
	}
	r.logger.Debug("cart repo: delete", zap.Strings("ids", ids), zap.Int64("rows", cmd.RowsAffected()))
	return nil
}

func saveCart(ctx context.Context, tx pgx.Tx, cart *domain.Cart) ([]func(), error) {
	var apply []func()

	cartID := cart.ID
	if cartID == "" {
		cartID = uuid.NewString()
		apply = append(apply, func() { cart.ID = cartID })
	}

	const upsert = `
INSERT INTO carts (id, store_id, customer_id, customer_name, is_anonymous, name, currency, language_code, coupon)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE
SET store_id = EXCLUDED.store_id,
    customer_id = EXCLUDED.customer_id,
    customer_name = EXCLUDED.customer_name,
    is_anonymous = EXCLUDED.is_anonymous,
    name = EXCLUDED.name,
    currency = EXCLUDED.currency,
    language_code = EXCLUDED.language_code,
    coupon = EXCLUDED.coupon,
    modified_at = now()
RETURNING created_at, modified_at
`
	var createdAt, modifiedAt time.Time
	if err := tx.QueryRow(ctx, upsert,
		cartID,
		cart.StoreID,
		cart.CustomerID,
		cart.CustomerName,
		cart.IsAnonymous,
		cart.Name,
		cart.Currency,
		cart.LanguageCode,
		cart.Coupon,
	).Scan(&createdAt, &modifiedAt); err != nil {
		return nil, fmt.Errorf("upsert cart: %w", err)
	}
	apply = append(apply, func() {
		cart.CreatedAt = createdAt
		cart.ModifiedAt = modifiedAt
	})

	for _, table := range []string{"cart_line_items", "cart_shipments", "cart_payments"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE cart_id = $1`, cartID); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for i := range cart.Items {
		item := &cart.Items[i]
		id := item.ID
		if id == "" {
			id = uuid.NewString()
			apply = append(apply, func() { item.ID = id })
		}
		batch.Queue(`
INSERT INTO cart_line_items (id, cart_id, position, product_id, sku, name, quantity, list_price, currency, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, COALESCE($10, now()))
ON CONFLICT (id) DO UPDATE
SET cart_id = EXCLUDED.cart_id,
    position = EXCLUDED.position,
    product_id = EXCLUDED.product_id,
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    quantity = EXCLUDED.quantity,
    list_price = EXCLUDED.list_price,
    currency = EXCLUDED.currency
WHERE cart_line_items.cart_id = EXCLUDED.cart_id
`, id, cartID, i, item.ProductID, item.SKU, item.Name, item.Quantity, item.ListPrice.String(), item.Currency, nullableTime(item.CreatedAt)).
			Exec(ownedBy("line item", id))
	}
	for i := range cart.Shipments {
		shipment := &cart.Shipments[i]
		id := shipment.ID
		if id == "" {
			id = uuid.NewString()
			apply = append(apply, func() { shipment.ID = id })
		}
		batch.Queue(`
INSERT INTO cart_shipments (id, cart_id, position, shipment_method_code, shipment_method_option, currency, price, discount_amount, tax_type)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9)
ON CONFLICT (id) DO UPDATE
SET cart_id = EXCLUDED.cart_id,
    position = EXCLUDED.position,
    shipment_method_code = EXCLUDED.shipment_method_code,
    shipment_method_option = EXCLUDED.shipment_method_option,
    currency = EXCLUDED.currency,
    price = EXCLUDED.price,
    discount_amount = EXCLUDED.discount_amount,
    tax_type = EXCLUDED.tax_type
WHERE cart_shipments.cart_id = EXCLUDED.cart_id
`, id, cartID, i, shipment.ShipmentMethodCode, shipment.ShipmentMethodOption, shipment.Currency,
			shipment.Price.String(), shipment.DiscountAmount.String(), shipment.TaxType).
			Exec(ownedBy("shipment", id))
	}
	for i := range cart.Payments {
		payment := &cart.Payments[i]
		id := payment.ID
		if id == "" {
			id = uuid.NewString()
			apply = append(apply, func() { payment.ID = id })
		}
		batch.Queue(`
INSERT INTO cart_payments (id, cart_id, position, payment_gateway_code, currency, amount)
VALUES ($1, $2, $3, $4, $5, $6::numeric)
ON CONFLICT (id) DO UPDATE
SET cart_id = EXCLUDED.cart_id,
    position = EXCLUDED.position,
    payment_gateway_code = EXCLUDED.payment_gateway_code,
    currency = EXCLUDED.currency,
    amount = EXCLUDED.amount
WHERE cart_payments.cart_id = EXCLUDED.cart_id
`, id, cartID, i, payment.PaymentGatewayCode, payment.Currency, payment.Amount.String()).
			Exec(ownedBy("payment", id))
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("write cart children: %w", err)
		}
	}
	return apply, nil
}

// ownedBy fails a child upsert that wrote nothing: the id exists on another
// cart and the conflict clause refused to take it over.
func ownedBy(kind, id string) func(pgconn.CommandTag) error {
	return func(tag pgconn.CommandTag) error {
		if tag.RowsAffected() == 0 {
			return domain.InvalidArgument(fmt.Sprintf("%s %s belongs to another cart", kind, id))
		}
		return nil
	}
}

func (r *postgresRepo) queryCarts(ctx context.Context, q string, args ...interface{}) ([]domain.Cart, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(
			&c.ID,
			&c.StoreID,
			&c.CustomerID,
			&c.CustomerName,
			&c.IsAnonymous,
			&c.Name,
			&c.Currency,
			&c.LanguageCode,
			&c.Coupon,
			&c.CreatedAt,
			&c.ModifiedAt,
		); err != nil {
			return nil, err
		}
		c.Items = []domain.LineItem{}
		c.Shipments = []domain.Shipment{}
		c.Payments = []domain.Payment{}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return carts, nil
	}
	if err := r.loadChildren(ctx, carts); err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *postgresRepo) loadChildren(ctx context.Context, carts []domain.Cart) error {
	ids := make([]string, len(carts))
	index := make(map[string]int, len(carts))
	for i, c := range carts {
		ids[i] = c.ID
		index[c.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, cart_id, product_id, sku, name, quantity, list_price::text, currency, created_at
FROM cart_line_items
WHERE cart_id = ANY($1)
ORDER BY cart_id, position
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.LineItem
		var cartID, listPrice string
		if err := rows.Scan(&item.ID, &cartID, &item.ProductID, &item.SKU, &item.Name, &item.Quantity, &listPrice, &item.Currency, &item.CreatedAt); err != nil {
			return err
		}
		if item.ListPrice, err = decimal.NewFromString(listPrice); err != nil {
			return fmt.Errorf("decode list price of line item %s: %w", item.ID, err)
		}
		i := index[cartID]
		carts[i].Items = append(carts[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
SELECT id, cart_id, shipment_method_code, shipment_method_option, currency, price::text, discount_amount::text, tax_type
FROM cart_shipments
WHERE cart_id = ANY($1)
ORDER BY cart_id, position
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.Shipment
		var cartID, price, discount string
		if err := rows.Scan(&s.ID, &cartID, &s.ShipmentMethodCode, &s.ShipmentMethodOption, &s.Currency, &price, &discount, &s.TaxType); err != nil {
			return err
		}
		if s.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("decode price of shipment %s: %w", s.ID, err)
		}
		if s.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
			return fmt.Errorf("decode discount of shipment %s: %w", s.ID, err)
		}
		i := index[cartID]
		carts[i].Shipments = append(carts[i].Shipments, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
SELECT id, cart_id, payment_gateway_code, currency, amount::text
FROM cart_payments
WHERE cart_id = ANY($1)
ORDER BY cart_id, position
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Payment
		var cartID, amount string
		if err := rows.Scan(&p.ID, &cartID, &p.PaymentGatewayCode, &p.Currency, &amount); err != nil {
			return err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("decode amount of payment %s: %w", p.ID, err)
		}
		i := index[cartID]
		carts[i].Payments = append(carts[i].Payments, p)
	}
	return rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
