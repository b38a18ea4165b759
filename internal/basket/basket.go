// Package basket holds the line items bought during one checkout session.
//
// Items are kept in the order they were added and never merged in storage.
// Lines with the same product number are merged only when the basket is
// rendered (see Merged and Details).
package basket

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/models"
)

const currencySign = "£"

// Basket is not safe for concurrent use: it belongs to a single checkout session
type Basket struct {
	// Order number assigned on submission, 0 means unassigned
	OrderNum int64

	items []models.Product
}

func New() *Basket {
	return &Basket{}
}

// FromOrder builds a basket with the order items, e.g. to render a packing slip
func FromOrder(o models.Order) *Basket {
	return &Basket{
		OrderNum: o.Number,
		items:    slices.Clone(o.Items),
	}
}

// Add appends the product line as given
// The caller must have bought the stock already, basket never talks to the ledger
func (b *Basket) Add(p models.Product) {
	b.items = append(b.items, p)
}

// RemoveLastItem pops the most recently added line
// Returns false on empty basket
func (b *Basket) RemoveLastItem() (models.Product, bool) {
	if len(b.items) == 0 {
		return models.Product{}, false
	}

	last := b.items[len(b.items)-1]
	b.items = b.items[:len(b.items)-1]
	return last, true
}

// RemoveByProductNum removes every line of the product and returns the number of units removed
func (b *Basket) RemoveByProductNum(number string) int {
	removed := 0
	b.items = slices.DeleteFunc(b.items, func(p models.Product) bool {
		if p.Number == number {
			removed += p.Quantity
			return true
		}
		return false
	})
	return removed
}

// RemoveQuantityByProductNum removes up to qty units of the product starting from the most recent lines
// Fully consumed lines are deleted, the last touched one may be reduced partially
// Returns the number of units actually removed
func (b *Basket) RemoveQuantityByProductNum(number string, qty int) int {
	remaining := qty

	for i := len(b.items) - 1; i >= 0 && remaining > 0; i-- {
		if b.items[i].Number != number {
			continue
		}

		if b.items[i].Quantity <= remaining {
			remaining -= b.items[i].Quantity
			b.items = slices.Delete(b.items, i, i+1)
		} else {
			b.items[i].Quantity -= remaining
			remaining = 0
		}
	}

	return max(qty, 0) - max(remaining, 0)
}

// ProductQuantity sums quantities of all lines of the product
func (b *Basket) ProductQuantity(number string) int {
	total := 0
	for _, p := range b.items {
		if p.Number == number {
			total += p.Quantity
		}
	}
	return total
}

// Items returns a copy of the basket lines in insertion order
func (b *Basket) Items() []models.Product {
	return slices.Clone(b.items)
}

func (b *Basket) Len() int {
	return len(b.items)
}

func (b *Basket) IsEmpty() bool {
	return len(b.items) == 0
}

// Merged returns one line per product number with summed quantities, sorted by product number
// Description and price are taken from the first line of the product
func (b *Basket) Merged() []models.Product {
	index := make(map[string]int, len(b.items))
	merged := make([]models.Product, 0, len(b.items))

	for _, p := range b.items {
		if i, ok := index[p.Number]; ok {
			merged[i].Quantity += p.Quantity
			continue
		}
		index[p.Number] = len(merged)
		merged = append(merged, p)
	}

	slices.SortFunc(merged, func(a, b models.Product) int {
		return strings.Compare(a.Number, b.Number)
	})

	return merged
}

// Total price of all basket lines
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.items {
		total = total.Add(p.Total())
	}
	return total
}

// Details renders the basket as a fixed width receipt
func (b *Basket) Details() string {
	var sb strings.Builder

	if b.OrderNum != 0 {
		fmt.Fprintf(&sb, "Order number: %03d\n", b.OrderNum)
	}

	merged := b.Merged()
	if len(merged) == 0 {
		return sb.String()
	}

	total := decimal.Zero
	for _, p := range merged {
		lineTotal := p.Total()
		fmt.Fprintf(&sb, "%-7s%-14.14s (%3d) %s%7s\n", p.Number, p.Description, p.Quantity, currencySign, lineTotal.StringFixed(2))
		total = total.Add(lineTotal)
	}

	sb.WriteString("----------------------------\n")
	fmt.Fprintf(&sb, "Total                       %s%7s\n", currencySign, total.StringFixed(2))

	return sb.String()
}
