package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
)

type OrderRepo struct {
	mu     sync.Mutex
	seq    int64
	orders map[int64]models.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[int64]models.Order)}
}

func (r *OrderRepo) CreateOrder(_ context.Context, items []models.Product) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := time.Now()
	o := models.Order{
		ID:         uuid.New(),
		Number:     r.seq,
		Status:     models.OrderStatusPlaced,
		Items:      cloneItems(items),
		PlacedAt:   now,
		ModifiedAt: now,
	}
	r.orders[o.Number] = o

	return cloneOrder(o), nil
}

func (r *OrderRepo) GetOrder(_ context.Context, number int64) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[number]
	if !ok {
		return models.Order{}, apperrors.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) GetOldest(_ context.Context, status string) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		oldest models.Order
		found  bool
	)
	for _, o := range r.orders {
		if o.Status == status && (!found || o.Number < oldest.Number) {
			oldest, found = o, true
		}
	}
	if !found {
		return models.Order{}, apperrors.ErrOrderNotFound
	}
	return cloneOrder(oldest), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, number int64, from string, to string) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[number]
	if !ok || o.Status != from {
		return models.Order{}, apperrors.ErrOrderInvalidTransition
	}

	o.Status = to
	o.ModifiedAt = time.Now()
	r.orders[number] = o

	return cloneOrder(o), nil
}

func (r *OrderRepo) ListNumbersByStatus(_ context.Context) (map[string][]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byStatus := make(map[string][]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		byStatus[status] = []int64{}
	}
	for number, o := range r.orders {
		byStatus[o.Status] = append(byStatus[o.Status], number)
	}
	for _, numbers := range byStatus {
		slices.Sort(numbers)
	}

	return byStatus, nil
}

func cloneItems(items []models.Product) []models.Product {
	if items == nil {
		return []models.Product{}
	}
	return slices.Clone(items)
}

func cloneOrder(o models.Order) models.Order {
	o.Items = cloneItems(o.Items)
	return o
}
