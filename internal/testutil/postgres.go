package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"cartbuilder/internal/db"
	"cartbuilder/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Pool connects to TEST_DB_DSN and applies migrations once per test binary.
// Tests are skipped when the variable is unset.
func Pool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		tb.Skip("set TEST_DB_DSN to run repository integration tests")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, nil)
	if err != nil {
		tb.Fatalf("connect db: %v", err)
	}
	tb.Cleanup(pool.Close)

	migrateOnce.Do(func() {
		migrateErr = migrate.Apply(ctx, pool)
	})
	if migrateErr != nil {
		tb.Fatalf("apply migrations: %v", migrateErr)
	}
	Reset(tb, pool)
	return pool
}

// Reset empties every table.
func Reset(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	const q = `TRUNCATE cart_payments, cart_shipments, cart_line_items, carts, products, customers,
store_payment_methods, store_shipping_options, store_shipping_methods, stores CASCADE`
	if _, err := pool.Exec(context.Background(), q); err != nil {
		tb.Fatalf("truncate tables: %v", err)
	}
}
