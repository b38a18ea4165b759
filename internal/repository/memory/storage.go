// Package memory keeps the stock ledger and the order queue in process memory.
// Used when no database is configured and in handler tests.
package memory

import (
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository"
)

type Storage struct {
	stock *StockRepo
	order *OrderRepo
}

func NewStorage(seed ...models.Product) repository.Storage {
	return &Storage{
		stock: NewStockRepo(seed...),
		order: NewOrderRepo(),
	}
}

func (s *Storage) Stock() repository.StockRepo {
	return s.stock
}

func (s *Storage) Order() repository.OrderRepo {
	return s.order
}

// Same catalogue the database is seeded with by migrations
func DefaultProducts() []models.Product {
	return []models.Product{
		{Number: "0001", Description: "40 inch LED HD TV", Price: decimal.RequireFromString("269.00"), Quantity: 90},
		{Number: "0002", Description: "DAB Radio", Price: decimal.RequireFromString("29.99"), Quantity: 20},
		{Number: "0003", Description: "Toaster", Price: decimal.RequireFromString("19.99"), Quantity: 33},
		{Number: "0004", Description: "Watch", Price: decimal.RequireFromString("29.99"), Quantity: 10},
		{Number: "0005", Description: "Digital Camera", Price: decimal.RequireFromString("89.99"), Quantity: 17},
		{Number: "0006", Description: "MP3 player", Price: decimal.RequireFromString("7.99"), Quantity: 15},
		{Number: "0007", Description: "32Gb USB2 drive", Price: decimal.RequireFromString("6.99"), Quantity: 1},
	}
}
