package models

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog record. Read-only from the cart and checkout paths.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Img         string          `json:"img,omitempty"`
	Description string          `json:"description,omitempty"`
}
