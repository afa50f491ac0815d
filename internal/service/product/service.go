package product

import (
	"context"
	"strings"

	"cartbuilder/internal/domain"
)

type productRepo interface {
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
}

// Service exposes the read side of a store's catalog, which is where clients
// find the product ids that addLineItem expects.
type Service struct {
	repo productRepo
}

func New(repo productRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Product, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, domain.InvalidArgument("store id required")
	}
	return s.repo.ListByStore(ctx, storeID)
}

func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.InvalidArgument("product id required")
	}
	return s.repo.GetByID(ctx, storeID, id)
}
