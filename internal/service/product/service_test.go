package product

import (
	"context"
	"errors"
	"testing"

	"cartbuilder/internal/domain"
)

type stubRepo struct {
	products []domain.Product
	listed   string
}

func (s *stubRepo) ListByStore(_ context.Context, storeID string) ([]domain.Product, error) {
	s.listed = storeID
	return s.products, nil
}

func (s *stubRepo) GetByID(_ context.Context, storeID, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.StoreID == storeID && p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestService_List(t *testing.T) {
	repo := &stubRepo{products: []domain.Product{{ID: "p1", StoreID: "store"}}}
	svc := New(repo)

	got, err := svc.List(context.Background(), "store")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || repo.listed != "store" {
		t.Fatalf("unexpected list %+v for %q", got, repo.listed)
	}

	if _, err := svc.List(context.Background(), " "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestService_Get(t *testing.T) {
	svc := New(&stubRepo{products: []domain.Product{{ID: "p1", StoreID: "store"}}})

	if _, err := svc.Get(context.Background(), "store", "p1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "other", "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "store", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
