package customer

import (
	"context"

	"cartbuilder/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByIDs(ctx context.Context, ids ...string) ([]domain.Customer, error)
}
