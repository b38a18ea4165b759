package order

import (
	"context"
	"errors"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository"
)

type Service struct {
	// Repository to access long term data
	orderRepo repository.OrderRepo
}

func NewService(orderRepo repository.OrderRepo) *Service {
	return &Service{
		orderRepo: orderRepo,
	}
}

// Submit enqueues basket lines as a PLACED order and returns its number
// Basket itself is not changed, assigning the number to it is up to the caller
func (s *Service) Submit(ctx context.Context, b *basket.Basket) (int64, error) {
	o, err := s.orderRepo.CreateOrder(ctx, b.Items())
	if err != nil {
		return 0, err
	}
	return o.Number, nil
}

// NextUnpacked returns the oldest PLACED order without changing it
// ok is false if there is nothing to pack
func (s *Service) NextUnpacked(ctx context.Context) (o models.Order, ok bool, err error) {
	o, err = s.orderRepo.GetOldest(ctx, models.OrderStatusPlaced)

	switch {
	case err == nil:
		return o, true, nil
	case errors.Is(err, apperrors.ErrOrderNotFound):
		return models.Order{}, false, nil
	default:
		return models.Order{}, false, err
	}
}

// MarkPacked moves order PLACED -> PACKED
func (s *Service) MarkPacked(ctx context.Context, number int64) error {
	return s.transit(ctx, number, models.OrderStatusPlaced)
}

// MarkCollected moves order PACKED -> COLLECTED
func (s *Service) MarkCollected(ctx context.Context, number int64) error {
	return s.transit(ctx, number, models.OrderStatusPacked)
}

// SnapshotByState lists order numbers grouped by status
// Not a consistent snapshot: orders may move while it is built
func (s *Service) SnapshotByState(ctx context.Context) (map[string][]int64, error) {
	return s.orderRepo.ListNumbersByStatus(ctx)
}

func (s *Service) GetOrder(ctx context.Context, number int64) (models.Order, error) {
	return s.orderRepo.GetOrder(ctx, number)
}

func (s *Service) transit(ctx context.Context, number int64, from string) error {
	to, ok := models.NextOrderStatus(from)
	if !ok {
		return apperrors.ErrOrderInvalidTransition
	}

	_, err := s.orderRepo.UpdateStatus(ctx, number, from, to)
	return err
}
