package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a purchased line. Price is the product price copied at
// checkout and is never recomputed from the catalog.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrderItem snapshots the current price of p.
func NewOrderItem(p Product, qty int) OrderItem {
	return OrderItem{
		ProductID: p.ID,
		Qty:       qty,
		Price:     p.Price,
	}
}

// Order is immutable once created.
type Order struct {
	ID         string      `json:"_id"`
	UserID     string      `json:"userId"`
	Items      []OrderItem `json:"orderItems"`
	Address    string      `json:"address"`
	Date       time.Time   `json:"date"`
	CardHolder string      `json:"cardHolder"`
	CardNumber string      `json:"cardNumber"`
}

// Total sums qty * snapshot price over every stored line.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return total
}
