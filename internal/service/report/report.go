package report

import (
	"context"

	"github.com/nkiryanov/ministore/internal/models"
)

const DefaultLowStockThreshold = 5

type Ledger interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
}

type Service struct {
	ledger    Ledger
	threshold int
}

func NewService(ledger Ledger, threshold int) *Service {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Service{ledger: ledger, threshold: threshold}
}

func (s *Service) Threshold() int {
	return s.threshold
}

// LowStock lists products with stock level below threshold, ordered by product number
func (s *Service) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.ledger.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]models.Product, 0)
	for _, p := range products {
		if p.Quantity < s.threshold {
			low = append(low, p)
		}
	}
	return low, nil
}
