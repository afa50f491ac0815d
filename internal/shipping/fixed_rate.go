package shipping

import (
	"context"

	"cartbuilder/internal/domain"
	"github.com/shopspring/decimal"
)

// FixedRateOption is one named delivery option with a flat price.
type FixedRateOption struct {
	Name           string
	Rate           decimal.Decimal
	DiscountAmount decimal.Decimal
}

// FixedRate offers the same flat rates regardless of cart contents.
type FixedRate struct {
	method  *domain.ShippingMethod
	options []FixedRateOption
}

// NewFixedRate binds a calculator to its method and installs it as the
// method's Calculator.
func NewFixedRate(method *domain.ShippingMethod, options ...FixedRateOption) *FixedRate {
	calc := &FixedRate{method: method, options: options}
	if method != nil {
		method.Calculator = calc
	}
	return calc
}

func (f *FixedRate) CalculateRates(_ context.Context, evalCtx domain.ShippingEvaluationContext) ([]domain.ShippingRate, error) {
	currency := ""
	if evalCtx.Cart != nil {
		currency = evalCtx.Cart.Currency
	}
	rates := make([]domain.ShippingRate, 0, len(f.options))
	for _, opt := range f.options {
		rates = append(rates, domain.ShippingRate{
			ShippingMethod: f.method,
			OptionName:     opt.Name,
			Rate:           opt.Rate,
			DiscountAmount: opt.DiscountAmount,
			Currency:       currency,
		})
	}
	return rates, nil
}
