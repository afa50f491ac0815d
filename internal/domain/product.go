package domain

import "time"

type Product struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"-"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}
