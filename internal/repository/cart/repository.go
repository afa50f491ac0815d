package cart

import (
	"context"

	"cartbuilder/internal/domain"
)

// Repository stores cart aggregates. Save upserts each cart together with all
// of its line items, shipments and payments, and assigns ids to transient
// entities in place.
type Repository interface {
	Search(ctx context.Context, criteria domain.CartCriteria) ([]domain.Cart, error)
	GetByIDs(ctx context.Context, ids ...string) ([]domain.Cart, error)
	Save(ctx context.Context, carts ...*domain.Cart) error
	Delete(ctx context.Context, ids ...string) error
}
