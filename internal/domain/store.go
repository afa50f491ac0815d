package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the read-only configuration a cart is priced and checked out against.
type Store struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	DefaultCurrency string           `json:"defaultCurrency"`
	ShippingMethods []ShippingMethod `json:"shippingMethods"`
	PaymentMethods  []PaymentMethod  `json:"paymentMethods"`
}

// ShippingRateCalculator produces the rates a shipping method offers for a cart.
type ShippingRateCalculator interface {
	CalculateRates(ctx context.Context, evalCtx ShippingEvaluationContext) ([]ShippingRate, error)
}

type ShippingMethod struct {
	Code       string                 `json:"code"`
	Name       string                 `json:"name"`
	IsActive   bool                   `json:"isActive"`
	TaxType    string                 `json:"taxType,omitempty"`
	Calculator ShippingRateCalculator `json:"-"`
}

// ShippingEvaluationContext is what rate calculators see of the cart.
type ShippingEvaluationContext struct {
	Cart *Cart
}

// ShippingRate is one priced option. ShippingMethod is nil for rates that are
// not tied to a configured method.
type ShippingRate struct {
	ShippingMethod *ShippingMethod `json:"shippingMethod,omitempty"`
	OptionName     string          `json:"optionName"`
	Rate           decimal.Decimal `json:"rate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Currency       string          `json:"currency,omitempty"`
}

type PaymentMethod struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}
