package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the shopping cart aggregate. Line items, shipments and payments are
// owned by the cart and saved or loaded together with it.
type Cart struct {
	ID           string     `json:"id"`
	StoreID      string     `json:"storeId"`
	CustomerID   string     `json:"customerId"`
	CustomerName string     `json:"customerName"`
	IsAnonymous  bool       `json:"isAnonymous"`
	Name         string     `json:"name"`
	Currency     string     `json:"currency"`
	LanguageCode string     `json:"languageCode,omitempty"`
	Coupon       *string    `json:"coupon,omitempty"`
	Items        []LineItem `json:"items"`
	Shipments    []Shipment `json:"shipments"`
	Payments     []Payment  `json:"payments"`
	CreatedAt    time.Time  `json:"createdAt"`
	ModifiedAt   time.Time  `json:"modifiedAt"`
}

// IsTransient reports whether the cart has not been persisted yet.
func (c *Cart) IsTransient() bool {
	return c.ID == ""
}

type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	ListPrice decimal.Decimal `json:"listPrice"`
	Currency  string          `json:"currency,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (li *LineItem) IsTransient() bool {
	return li.ID == ""
}

type Shipment struct {
	ID                   string          `json:"id"`
	ShipmentMethodCode   string          `json:"shipmentMethodCode,omitempty"`
	ShipmentMethodOption string          `json:"shipmentMethodOption,omitempty"`
	Currency             string          `json:"currency"`
	Price                decimal.Decimal `json:"price"`
	DiscountAmount       decimal.Decimal `json:"discountAmount"`
	TaxType              string          `json:"taxType,omitempty"`
}

func (s *Shipment) IsTransient() bool {
	return s.ID == ""
}

type Payment struct {
	ID                 string          `json:"id"`
	PaymentGatewayCode string          `json:"paymentGatewayCode,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
}

func (p *Payment) IsTransient() bool {
	return p.ID == ""
}

// CartCriteria selects carts whose owner, store, name and currency all match.
type CartCriteria struct {
	CustomerID string
	StoreID    string
	Name       string
	Currency   string
}
