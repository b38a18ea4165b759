package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository/memory"
	"github.com/nkiryanov/ministore/internal/service/stock"
)

type failingLedger struct{}

func (failingLedger) GetProducts(context.Context) ([]models.Product, error) {
	return nil, apperrors.ErrPersistence
}

func TestService_LowStock(t *testing.T) {
	ledger := stock.NewService(memory.NewStockRepo(memory.DefaultProducts()...), nil, logger.NewNoOpLogger())

	tests := []struct {
		name      string
		threshold int
		expected  []string
	}{
		{"default threshold", 0, []string{"0007"}},
		{"threshold is exclusive", 10, []string{"0007"}},
		{"wider threshold", 18, []string{"0004", "0005", "0006", "0007"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, err := NewService(ledger, tt.threshold).LowStock(t.Context())
			require.NoError(t, err)

			numbers := make([]string, 0, len(low))
			for _, p := range low {
				numbers = append(numbers, p.Number)
			}
			require.Equal(t, tt.expected, numbers)
		})
	}

	t.Run("nothing low", func(t *testing.T) {
		low, err := NewService(ledger, 1).LowStock(t.Context())

		require.NoError(t, err)
		require.NotNil(t, low)
		require.Empty(t, low)
	})

	t.Run("ledger error", func(t *testing.T) {
		_, err := NewService(failingLedger{}, 5).LowStock(t.Context())

		require.ErrorIs(t, err, apperrors.ErrPersistence)
	})
}

func TestScheduler(t *testing.T) {
	report := NewService(failingLedger{}, 5)

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(report, "every minute", logger.NewNoOpLogger())

		require.Error(t, s.Start())
	})

	t.Run("start and stop", func(t *testing.T) {
		s := NewScheduler(report, "", logger.NewNoOpLogger())

		require.NoError(t, s.Start())
		<-s.Stop().Done()
	})

	t.Run("run survives ledger error", func(t *testing.T) {
		s := NewScheduler(report, "", logger.NewNoOpLogger())

		require.NotPanics(t, s.Run)
	})
}
