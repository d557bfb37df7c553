package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a cart entry with its product resolved for display.
type CartLine struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

type CartView struct {
	UserID    string     `json:"userId"`
	CartItems []CartLine `json:"cartItems"`
}

// OrderLine pairs the stored snapshot price with the product as it is now.
type OrderLine struct {
	Product Product         `json:"product"`
	Qty     int             `json:"qty"`
	Price   decimal.Decimal `json:"price"`
}

type OrderView struct {
	ID         string          `json:"_id"`
	UserID     string          `json:"userId"`
	OrderItems []OrderLine     `json:"orderItems"`
	Address    string          `json:"address"`
	Date       time.Time       `json:"date"`
	CardHolder string          `json:"cardHolder"`
	CardNumber string          `json:"cardNumber"`
	Total      decimal.Decimal `json:"total"`
}
