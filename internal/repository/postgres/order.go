package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
)

type OrderRepo struct {
	DB DBTX
}

// Order number comes from 'order_number_seq' (column default), so concurrent submissions never share a number
const createOrder = `-- name: CreateOrder
INSERT INTO orders (id, status, items, placed_at, modified_at)
VALUES ($1, $2, $3, $4, $4)
RETURNING id, number, status, items, placed_at, modified_at
`

func (r *OrderRepo) CreateOrder(ctx context.Context, items []models.Product) (models.Order, error) {
	if items == nil {
		items = []models.Product{}
	}

	rows, _ := r.DB.Query(ctx, createOrder, uuid.New(), models.OrderStatusPlaced, items, time.Now())
	o, err := pgx.CollectOneRow(rows, rowToOrder)
	if err != nil {
		return o, dbError(err)
	}

	return o, nil
}

const getOrder = `-- name: GetOrder
SELECT id, number, status, items, placed_at, modified_at
FROM orders
WHERE number = $1
`

func (r *OrderRepo) GetOrder(ctx context.Context, number int64) (models.Order, error) {
	rows, _ := r.DB.Query(ctx, getOrder, number)
	return collectOrder(rows)
}

const getOldest = `-- name: GetOldest
SELECT id, number, status, items, placed_at, modified_at
FROM orders
WHERE status = $1
ORDER BY number
LIMIT 1
`

func (r *OrderRepo) GetOldest(ctx context.Context, status string) (models.Order, error) {
	rows, _ := r.DB.Query(ctx, getOldest, status)
	return collectOrder(rows)
}

// Compare-and-set on status: concurrent transitions of the same order can't both succeed
const updateStatus = `-- name: UpdateStatus
UPDATE orders SET status = $3, modified_at = $4
WHERE number = $1 AND status = $2
RETURNING id, number, status, items, placed_at, modified_at
`

func (r *OrderRepo) UpdateStatus(ctx context.Context, number int64, from string, to string) (models.Order, error) {
	rows, _ := r.DB.Query(ctx, updateStatus, number, from, to, time.Now())
	o, err := pgx.CollectOneRow(rows, rowToOrder)

	switch {
	case err == nil:
		return o, nil
	case errors.Is(err, pgx.ErrNoRows):
		return o, apperrors.ErrOrderInvalidTransition
	default:
		return o, dbError(err)
	}
}

const listNumbersByStatus = `-- name: ListNumbersByStatus
SELECT status, number FROM orders ORDER BY number
`

func (r *OrderRepo) ListNumbersByStatus(ctx context.Context) (map[string][]int64, error) {
	type statusNumber struct {
		Status string
		Number int64
	}

	rows, _ := r.DB.Query(ctx, listNumbersByStatus)
	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (statusNumber, error) {
		var sn statusNumber
		err := row.Scan(&sn.Status, &sn.Number)
		return sn, err
	})
	if err != nil {
		return nil, dbError(err)
	}

	byStatus := make(map[string][]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		byStatus[status] = []int64{}
	}
	for _, sn := range pairs {
		byStatus[sn.Status] = append(byStatus[sn.Status], sn.Number)
	}

	return byStatus, nil
}

func collectOrder(rows pgx.Rows) (models.Order, error) {
	o, err := pgx.CollectOneRow(rows, rowToOrder)

	switch {
	case err == nil:
		return o, nil
	case errors.Is(err, pgx.ErrNoRows):
		return o, apperrors.ErrOrderNotFound
	default:
		return o, dbError(err)
	}
}

func rowToOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.Number, &o.Status, &o.Items, &o.PlacedAt, &o.ModifiedAt)
	return o, err
}
