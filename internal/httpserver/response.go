package httpserver

import (
	"errors"
	"net/http"

	"cartbuilder/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorEnvelope struct {
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Errors     []apiError `json:"errors"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, errorEnvelope{
		StatusCode: status,
		Message:    msg,
		Errors:     []apiError{{Code: code, Message: msg}},
	})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
// Internal failures are logged and reported without their cause.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var shipErr *domain.UnknownShippingMethodError
	var payErr *domain.UnknownPaymentMethodError
	switch {
	case errors.As(err, &shipErr):
		c.JSON(http.StatusBadRequest, errorEnvelope{
			StatusCode: http.StatusBadRequest,
			Message:    shipErr.Error(),
			Errors: []apiError{{
				Code:    "UnknownShippingMethod",
				Message: shipErr.Error(),
				Details: map[string]string{"shipmentMethodCode": shipErr.Code, "shipmentMethodOption": shipErr.Option},
			}},
		})
	case errors.As(err, &payErr):
		c.JSON(http.StatusBadRequest, errorEnvelope{
			StatusCode: http.StatusBadRequest,
			Message:    payErr.Error(),
			Errors: []apiError{{
				Code:    "UnknownPaymentMethod",
				Message: payErr.Error(),
				Details: map[string]string{"paymentGatewayCode": payErr.Code},
			}},
		})
	case errors.Is(err, domain.ErrInvalidArgument):
		respondError(c, http.StatusBadRequest, "InvalidInput", err)
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "ResourceNotFound", err)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "General", errors.New("internal error"))
	}
}

type shippingRateView struct {
	ShippingMethodCode string          `json:"shippingMethodCode,omitempty"`
	ShippingMethodName string          `json:"shippingMethodName,omitempty"`
	TaxType            string          `json:"taxType,omitempty"`
	OptionName         string          `json:"optionName"`
	Rate               decimal.Decimal `json:"rate"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	Currency           string          `json:"currency,omitempty"`
}

func toShippingRateViews(rates []domain.ShippingRate) []shippingRateView {
	out := make([]shippingRateView, 0, len(rates))
	for _, r := range rates {
		v := shippingRateView{
			OptionName:     r.OptionName,
			Rate:           r.Rate,
			DiscountAmount: r.DiscountAmount,
			Currency:       r.Currency,
		}
		if r.ShippingMethod != nil {
			v.ShippingMethodCode = r.ShippingMethod.Code
			v.ShippingMethodName = r.ShippingMethod.Name
			v.TaxType = r.ShippingMethod.TaxType
		}
		out = append(out, v)
	}
	return out
}

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newListResponse[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Count: len(items), Results: items}
}
