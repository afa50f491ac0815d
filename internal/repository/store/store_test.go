package store

import (
	"context"
	"errors"
	"testing"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/shipping"
	"cartbuilder/internal/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func TestPostgres_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	err := repo.Upsert(ctx, Definition{
		ID:              "main",
		Name:            "Main",
		DefaultCurrency: "USD",
		ShippingMethods: []ShippingMethodDefinition{
			{Code: "GROUND", Name: "Ground", IsActive: true, TaxType: "SHIPPING", Options: []shipping.FixedRateOption{
				{Name: "STD", Rate: decimal.RequireFromString("5"), DiscountAmount: decimal.RequireFromString("0.5")},
				{Name: "EXP", Rate: decimal.RequireFromString("12.5")},
			}},
			{Code: "AIR", Name: "Air", IsActive: false},
		},
		PaymentMethods: []domain.PaymentMethod{
			{Code: "COD", Name: "Cash on delivery", IsActive: true},
		},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	s, err := repo.GetByID(ctx, "main")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.DefaultCurrency != "USD" || len(s.ShippingMethods) != 2 || len(s.PaymentMethods) != 1 {
		t.Fatalf("unexpected store %+v", s)
	}
	ground := &s.ShippingMethods[0]
	if ground.Code != "GROUND" || ground.Calculator == nil {
		t.Fatalf("expected GROUND with calculator, got %+v", ground)
	}

	rates, err := ground.Calculator.CalculateRates(ctx, domain.ShippingEvaluationContext{Cart: &domain.Cart{Currency: "USD"}})
	if err != nil {
		t.Fatalf("CalculateRates: %v", err)
	}
	if len(rates) != 2 || rates[0].OptionName != "STD" || rates[0].ShippingMethod != ground {
		t.Fatalf("unexpected rates %+v", rates)
	}
	if !rates[1].Rate.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected EXP rate %s", rates[1].Rate)
	}
}

func TestPostgres_UpsertReplacesMethods(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	def := Definition{ID: "main", Name: "Main", DefaultCurrency: "USD", PaymentMethods: []domain.PaymentMethod{
		{Code: "COD", Name: "Cash", IsActive: true},
		{Code: "WIRE", Name: "Wire", IsActive: true},
	}}
	if err := repo.Upsert(ctx, def); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	def.PaymentMethods = def.PaymentMethods[1:]
	if err := repo.Upsert(ctx, def); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	s, err := repo.GetByID(ctx, "main")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(s.PaymentMethods) != 1 || s.PaymentMethods[0].Code != "WIRE" {
		t.Fatalf("unexpected payment methods %+v", s.PaymentMethods)
	}
}

func TestPostgres_GetUnknownStore(t *testing.T) {
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
