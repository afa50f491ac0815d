package store

import (
	"context"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/shipping"
)

// Repository loads store configuration. Stores returned by GetByID carry a
// fixed-rate calculator on every shipping method.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	Upsert(ctx context.Context, def Definition) error
}

// Definition is the writable form of a store.
type Definition struct {
	ID              string
	Name            string
	DefaultCurrency string
	ShippingMethods []ShippingMethodDefinition
	PaymentMethods  []domain.PaymentMethod
}

type ShippingMethodDefinition struct {
	Code     string
	Name     string
	IsActive bool
	TaxType  string
	Options  []shipping.FixedRateOption
}
