package models

import (
	"github.com/shopspring/decimal"
)

// Product is a snapshot of a stock ledger row
// Quantity means stock level when read from the ledger and bought units when held in a basket
type Product struct {
	Number      string          `json:"number"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Total price of the product line (price * quantity)
func (p Product) Total() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
