package seed

import (
	"context"
	"errors"
	"fmt"

	"cartbuilder/internal/domain"
	storerepo "cartbuilder/internal/repository/store"
	"cartbuilder/internal/shipping"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DemoStoreID = "demo"

type storeWriter interface {
	Upsert(ctx context.Context, def storerepo.Definition) error
}

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type customerStore interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type Repos struct {
	Stores    storeWriter
	Products  productWriter
	Customers customerStore
}

// DemoStore is a store with one active and one inactive method of each kind.
func DemoStore() storerepo.Definition {
	return storerepo.Definition{
		ID:              DemoStoreID,
		Name:            "Demo Store",
		DefaultCurrency: "USD",
		ShippingMethods: []storerepo.ShippingMethodDefinition{
			{
				Code:     "GROUND",
				Name:     "Ground",
				IsActive: true,
				TaxType:  "SHIPPING",
				Options: []shipping.FixedRateOption{
					{Name: "STANDARD", Rate: decimal.RequireFromString("4.99")},
					{Name: "EXPRESS", Rate: decimal.RequireFromString("12.99"), DiscountAmount: decimal.RequireFromString("2.00")},
				},
			},
			{
				Code:     "AIR",
				Name:     "Air freight",
				IsActive: false,
				TaxType:  "SHIPPING",
				Options: []shipping.FixedRateOption{
					{Name: "OVERNIGHT", Rate: decimal.RequireFromString("29.99")},
				},
			},
		},
		PaymentMethods: []domain.PaymentMethod{
			{Code: "COD", Name: "Cash on delivery", IsActive: true},
			{Code: "WIRE", Name: "Bank transfer", IsActive: false},
		},
	}
}

// Apply inserts demo data for manual testing. It is idempotent.
func Apply(ctx context.Context, repos Repos, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := DemoStore()
	if err := repos.Stores.Upsert(ctx, store); err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}

	products := []domain.Product{
		{StoreID: store.ID, SKU: "SKU-DEMO-TSHIRT", Name: "Demo T-Shirt", PriceCents: 1999, Currency: "USD"},
		{StoreID: store.ID, SKU: "SKU-DEMO-MUG", Name: "Demo Mug", PriceCents: 1299, Currency: "USD"},
	}
	for _, p := range products {
		saved, err := repos.Products.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
		logger.Info("seeded product", zap.String("sku", saved.SKU), zap.String("id", saved.ID))
	}

	customer, err := ensureCustomer(ctx, repos.Customers, domain.Customer{
		Email:     "demo@example.com",
		FirstName: "Demo",
		LastName:  "Customer",
	})
	if err != nil {
		return fmt.Errorf("ensure customer: %w", err)
	}
	logger.Info("seeded customer", zap.String("id", customer.ID), zap.String("email", customer.Email))
	return nil
}

func ensureCustomer(ctx context.Context, customers customerStore, c domain.Customer) (*domain.Customer, error) {
	existing, err := customers.GetByEmail(ctx, c.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return customers.Create(ctx, c)
}
