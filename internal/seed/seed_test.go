package seed

import (
	"context"
	"errors"
	"testing"

	"cartbuilder/internal/domain"
	storerepo "cartbuilder/internal/repository/store"
)

type recordingStores struct {
	defs []storerepo.Definition
	err  error
}

func (r *recordingStores) Upsert(_ context.Context, def storerepo.Definition) error {
	r.defs = append(r.defs, def)
	return r.err
}

type recordingProducts struct {
	skus []string
}

func (r *recordingProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.skus = append(r.skus, p.SKU)
	p.ID = "id-" + p.SKU
	return &p, nil
}

type memoryCustomers struct {
	byEmail map[string]domain.Customer
	created int
}

func (m *memoryCustomers) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	m.created++
	c.ID = "cust-1"
	m.byEmail[c.Email] = c
	return &c, nil
}

func (m *memoryCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func TestApply_IsIdempotent(t *testing.T) {
	stores := &recordingStores{}
	products := &recordingProducts{}
	customers := &memoryCustomers{byEmail: map[string]domain.Customer{}}
	repos := Repos{Stores: stores, Products: products, Customers: customers}

	for i := 0; i < 2; i++ {
		if err := Apply(context.Background(), repos, nil); err != nil {
			t.Fatalf("Apply run %d: %v", i, err)
		}
	}
	if len(stores.defs) != 2 || stores.defs[0].ID != DemoStoreID {
		t.Fatalf("unexpected store upserts %+v", stores.defs)
	}
	if len(products.skus) != 4 {
		t.Fatalf("expected 4 product upserts, got %d", len(products.skus))
	}
	if customers.created != 1 {
		t.Fatalf("expected the customer to be created once, got %d", customers.created)
	}
}

func TestApply_StoreError(t *testing.T) {
	repos := Repos{
		Stores:    &recordingStores{err: errors.New("boom")},
		Products:  &recordingProducts{},
		Customers: &memoryCustomers{byEmail: map[string]domain.Customer{}},
	}
	if err := Apply(context.Background(), repos, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDemoStore_HasActiveAndInactiveMethods(t *testing.T) {
	store := DemoStore()
	var active, inactive int
	for _, m := range store.ShippingMethods {
		if m.IsActive {
			active++
		} else {
			inactive++
		}
		if len(m.Options) == 0 {
			t.Fatalf("method %s has no options", m.Code)
		}
	}
	if active == 0 || inactive == 0 {
		t.Fatalf("expected both active and inactive shipping methods")
	}
}
