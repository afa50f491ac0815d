package product

import (
	"context"

	"cartbuilder/internal/domain"
)

type Repository interface {
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
