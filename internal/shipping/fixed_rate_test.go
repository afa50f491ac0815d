package shipping

import (
	"context"
	"testing"

	"cartbuilder/internal/domain"
	"github.com/shopspring/decimal"
)

func TestFixedRate_BindsMethodAndCurrency(t *testing.T) {
	method := &domain.ShippingMethod{Code: "GROUND", IsActive: true}
	NewFixedRate(method,
		FixedRateOption{Name: "STD", Rate: decimal.NewFromInt(5)},
		FixedRateOption{Name: "EXPRESS", Rate: decimal.NewFromInt(12), DiscountAmount: decimal.NewFromInt(2)},
	)
	if method.Calculator == nil {
		t.Fatalf("expected calculator to be installed on method")
	}

	rates, err := method.Calculator.CalculateRates(context.Background(), domain.ShippingEvaluationContext{
		Cart: &domain.Cart{Currency: "USD"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	if rates[0].ShippingMethod != method || rates[0].OptionName != "STD" || !rates[0].Rate.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected first rate %+v", rates[0])
	}
	if rates[1].Currency != "USD" || !rates[1].DiscountAmount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected second rate %+v", rates[1])
	}
}

func TestFixedRate_FreshSlicePerCall(t *testing.T) {
	calc := NewFixedRate(nil, FixedRateOption{Name: "STD", Rate: decimal.NewFromInt(1)})
	first, _ := calc.CalculateRates(context.Background(), domain.ShippingEvaluationContext{})
	first[0].OptionName = "changed"
	second, _ := calc.CalculateRates(context.Background(), domain.ShippingEvaluationContext{})
	if second[0].OptionName != "STD" {
		t.Fatalf("expected calculator output to be independent per call, got %q", second[0].OptionName)
	}
	if second[0].ShippingMethod != nil {
		t.Fatalf("expected rate without method reference")
	}
}
