package cart

import (
	"context"
	"errors"
	"testing"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func TestPostgres_SaveAssignsIDsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	coupon := "SAVE10"
	cart := &domain.Cart{
		StoreID:      "store",
		CustomerID:   "cust",
		CustomerName: "Jane Doe",
		Name:         "default",
		Currency:     "USD",
		LanguageCode: "en-US",
		Coupon:       &coupon,
		Items: []domain.LineItem{
			{ProductID: "p1", SKU: "SKU-1", Name: "Mug", Quantity: 2, ListPrice: decimal.RequireFromString("9.99"), Currency: "USD"},
			{ProductID: "p2", Quantity: 1, ListPrice: decimal.RequireFromString("1.5"), Currency: "USD"},
		},
		Shipments: []domain.Shipment{
			{ShipmentMethodCode: "GROUND", ShipmentMethodOption: "STD", Currency: "USD", Price: decimal.RequireFromString("5"), DiscountAmount: decimal.RequireFromString("0.5"), TaxType: "SHIPPING"},
		},
		Payments: []domain.Payment{
			{PaymentGatewayCode: "COD", Currency: "USD", Amount: decimal.RequireFromString("24.98")},
		},
	}
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cart.ID == "" || cart.Items[0].ID == "" || cart.Items[1].ID == "" || cart.Shipments[0].ID == "" || cart.Payments[0].ID == "" {
		t.Fatalf("expected ids to be assigned, got %+v", cart)
	}
	if cart.CreatedAt.IsZero() || cart.ModifiedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	got, err := repo.GetByIDs(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 cart, got %d", len(got))
	}
	fetched := got[0]
	if fetched.CustomerName != "Jane Doe" || fetched.Coupon == nil || *fetched.Coupon != "SAVE10" {
		t.Fatalf("unexpected cart %+v", fetched)
	}
	if len(fetched.Items) != 2 || fetched.Items[0].ProductID != "p1" || fetched.Items[1].ProductID != "p2" {
		t.Fatalf("line items out of order: %+v", fetched.Items)
	}
	if !fetched.Items[0].ListPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected list price %s", fetched.Items[0].ListPrice)
	}
	if len(fetched.Shipments) != 1 || !fetched.Shipments[0].DiscountAmount.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected shipments %+v", fetched.Shipments)
	}
	if len(fetched.Payments) != 1 || fetched.Payments[0].PaymentGatewayCode != "COD" {
		t.Fatalf("unexpected payments %+v", fetched.Payments)
	}
}

func TestPostgres_SaveReplacesChildren(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	cart := &domain.Cart{StoreID: "store", Currency: "USD", Items: []domain.LineItem{
		{ProductID: "p1", Quantity: 1, Currency: "USD"},
		{ProductID: "p2", Quantity: 1, Currency: "USD"},
	}}
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cart.Items = cart.Items[1:]
	cart.Coupon = nil
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.GetByIDs(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got[0].Items) != 1 || got[0].Items[0].ProductID != "p2" {
		t.Fatalf("expected only p2 to remain, got %+v", got[0].Items)
	}
}

func TestPostgres_SearchMatchesAllCriteria(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	match := &domain.Cart{StoreID: "store", CustomerID: "cust", Name: "default", Currency: "USD"}
	otherCurrency := &domain.Cart{StoreID: "store", CustomerID: "cust", Name: "default", Currency: "EUR"}
	otherName := &domain.Cart{StoreID: "store", CustomerID: "cust", Name: "wishlist", Currency: "USD"}
	if err := repo.Save(ctx, match, otherCurrency, otherName); err != nil {
		t.Fatalf("Save: %v", err)
	}

	found, err := repo.Search(ctx, domain.CartCriteria{StoreID: "store", CustomerID: "cust", Name: "default", Currency: "USD"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ID != match.ID {
		t.Fatalf("expected only %s, got %+v", match.ID, found)
	}

	none, err := repo.Search(ctx, domain.CartCriteria{StoreID: "store", CustomerID: "someone-else", Name: "default", Currency: "USD"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no carts, got %d", len(none))
	}
}

func TestPostgres_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	cart := &domain.Cart{StoreID: "store", Currency: "USD", Items: []domain.LineItem{{ProductID: "p1", Quantity: 1}}}
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, cart.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := repo.GetByIDs(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected cart to be gone, got %+v", got)
	}
	var lines int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM cart_line_items WHERE cart_id = $1`, cart.ID).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected line items to be deleted, got %d", lines)
	}
}

func TestPostgres_SaveRefusesForeignChildIDs(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	victim := &domain.Cart{
		StoreID:   "store",
		Currency:  "USD",
		Shipments: []domain.Shipment{{ShipmentMethodCode: "GROUND", Currency: "USD"}},
		Payments:  []domain.Payment{{PaymentGatewayCode: "COD", Currency: "USD", Amount: decimal.NewFromInt(5)}},
	}
	attacker := &domain.Cart{StoreID: "store", Currency: "USD"}
	if err := repo.Save(ctx, victim, attacker); err != nil {
		t.Fatalf("Save: %v", err)
	}

	attacker.Shipments = []domain.Shipment{{ID: victim.Shipments[0].ID, ShipmentMethodCode: "AIR", Currency: "USD"}}
	if err := repo.Save(ctx, attacker); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for foreign shipment, got %v", err)
	}
	attacker.Shipments = nil
	attacker.Payments = []domain.Payment{{ID: victim.Payments[0].ID, PaymentGatewayCode: "COD", Currency: "USD", Amount: decimal.NewFromInt(1)}}
	if err := repo.Save(ctx, attacker); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for foreign payment, got %v", err)
	}

	got, err := repo.GetByIDs(ctx, victim.ID, attacker.ID)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	for _, c := range got {
		switch c.ID {
		case victim.ID:
			if len(c.Shipments) != 1 || c.Shipments[0].ID != victim.Shipments[0].ID || c.Shipments[0].ShipmentMethodCode != "GROUND" {
				t.Fatalf("victim shipment changed: %+v", c.Shipments)
			}
			if len(c.Payments) != 1 || c.Payments[0].ID != victim.Payments[0].ID || !c.Payments[0].Amount.Equal(decimal.NewFromInt(5)) {
				t.Fatalf("victim payment changed: %+v", c.Payments)
			}
		case attacker.ID:
			if len(c.Shipments) != 0 || len(c.Payments) != 0 {
				t.Fatalf("expected attacker cart to stay empty, got %+v", c)
			}
		}
	}
}

func TestPostgres_ShipmentMovesAfterSourceDeleted(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	source := &domain.Cart{StoreID: "store", Currency: "USD", Shipments: []domain.Shipment{{ShipmentMethodCode: "GROUND", Currency: "USD"}}}
	target := &domain.Cart{StoreID: "store", Currency: "USD"}
	if err := repo.Save(ctx, source, target); err != nil {
		t.Fatalf("Save: %v", err)
	}

	target.Shipments = append(target.Shipments, source.Shipments...)
	if err := repo.Delete(ctx, source.ID); err != nil {
		t.Fatalf("Delete source: %v", err)
	}
	if err := repo.Save(ctx, target); err != nil {
		t.Fatalf("Save target: %v", err)
	}

	got, err := repo.GetByIDs(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got[0].Shipments) != 1 || got[0].Shipments[0].ID != source.Shipments[0].ID {
		t.Fatalf("expected shipment %s on target, got %+v", source.Shipments[0].ID, got[0].Shipments)
	}
}
