package postgres

import (
	"slices"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository"
	"github.com/nkiryanov/ministore/internal/testutil"
)

func TestOrder(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			fn(innerTx, NewStorage(innerTx))
		})
	}

	items := []models.Product{
		{Number: "0001", Description: "40 inch LED HD TV", Price: decimal.RequireFromString("269.00"), Quantity: 1},
		{Number: "0003", Description: "Toaster", Price: decimal.RequireFromString("19.99"), Quantity: 2},
	}

	t.Run("CreateOrder", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					o, err := storage.Order().CreateOrder(t.Context(), items)

					require.NoError(t, err)
					require.Positive(t, o.Number)
					require.Equal(t, models.OrderStatusPlaced, o.Status)
					require.Len(t, o.Items, 2)
					require.Equal(t, "Toaster", o.Items[1].Description)
					require.True(t, o.Items[1].Price.Equal(decimal.RequireFromString("19.99")))
					require.Equal(t, o.PlacedAt, o.ModifiedAt)
				})
			})

			t.Run("numbers increase", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					first, err := storage.Order().CreateOrder(t.Context(), items)
					require.NoError(t, err)
					second, err := storage.Order().CreateOrder(t.Context(), items)
					require.NoError(t, err)

					require.Greater(t, second.Number, first.Number)
				})
			})

			t.Run("empty order", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					o, err := storage.Order().CreateOrder(t.Context(), nil)
					require.NoError(t, err)

					got, err := storage.Order().GetOrder(t.Context(), o.Number)
					require.NoError(t, err)
					require.NotNil(t, got.Items)
					require.Empty(t, got.Items)
				})
			})
		})
	})

	t.Run("GetOrder not found", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			_, err := storage.Order().GetOrder(t.Context(), -1)

			require.ErrorIs(t, err, apperrors.ErrOrderNotFound)
		})
	})

	t.Run("GetOldest", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("nothing placed", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					_, err := storage.Order().GetOldest(t.Context(), models.OrderStatusPlaced)

					require.ErrorIs(t, err, apperrors.ErrOrderNotFound)
				})
			})

			t.Run("lowest number first", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					repo := storage.Order()
					first, err := repo.CreateOrder(t.Context(), items)
					require.NoError(t, err)
					second, err := repo.CreateOrder(t.Context(), items)
					require.NoError(t, err)

					got, err := repo.GetOldest(t.Context(), models.OrderStatusPlaced)
					require.NoError(t, err)
					require.Equal(t, first.Number, got.Number)

					_, err = repo.UpdateStatus(t.Context(), first.Number, models.OrderStatusPlaced, models.OrderStatusPacked)
					require.NoError(t, err)

					got, err = repo.GetOldest(t.Context(), models.OrderStatusPlaced)
					require.NoError(t, err)
					require.Equal(t, second.Number, got.Number, "packed order must not be returned as placed")
				})
			})
		})
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("forward transitions", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					repo := storage.Order()
					o, err := repo.CreateOrder(t.Context(), items)
					require.NoError(t, err)

					packed, err := repo.UpdateStatus(t.Context(), o.Number, models.OrderStatusPlaced, models.OrderStatusPacked)
					require.NoError(t, err)
					require.Equal(t, models.OrderStatusPacked, packed.Status)

					collected, err := repo.UpdateStatus(t.Context(), o.Number, models.OrderStatusPacked, models.OrderStatusCollected)
					require.NoError(t, err)
					require.Equal(t, models.OrderStatusCollected, collected.Status)
					require.Len(t, collected.Items, 2, "items must survive transitions")
				})
			})

			t.Run("wrong source status", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					repo := storage.Order()
					o, err := repo.CreateOrder(t.Context(), items)
					require.NoError(t, err)

					_, err = repo.UpdateStatus(t.Context(), o.Number, models.OrderStatusPacked, models.OrderStatusCollected)
					require.ErrorIs(t, err, apperrors.ErrOrderInvalidTransition)

					got, err := repo.GetOrder(t.Context(), o.Number)
					require.NoError(t, err)
					require.Equal(t, models.OrderStatusPlaced, got.Status)
				})
			})

			t.Run("unknown order", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					_, err := storage.Order().UpdateStatus(t.Context(), -1, models.OrderStatusPlaced, models.OrderStatusPacked)

					require.ErrorIs(t, err, apperrors.ErrOrderInvalidTransition)
				})
			})
		})
	})

	t.Run("ListNumbersByStatus", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			repo := storage.Order()
			first, err := repo.CreateOrder(t.Context(), items)
			require.NoError(t, err)
			second, err := repo.CreateOrder(t.Context(), items)
			require.NoError(t, err)
			_, err = repo.UpdateStatus(t.Context(), second.Number, models.OrderStatusPlaced, models.OrderStatusPacked)
			require.NoError(t, err)

			byStatus, err := repo.ListNumbersByStatus(t.Context())

			require.NoError(t, err)
			require.Equal(t, map[string][]int64{
				models.OrderStatusPlaced:    {first.Number},
				models.OrderStatusPacked:    {second.Number},
				models.OrderStatusCollected: {},
			}, byStatus)
		})
	})

	t.Run("concurrent submissions get distinct ascending numbers", func(t *testing.T) {
		// Pool is used on purpose: every goroutine must take own connection
		repo := NewStorage(pg.Pool).Order()

		var wg sync.WaitGroup
		var mu sync.Mutex
		numbers := make(map[int64]struct{})
		perCaller := make([][]int64, 10)

		for caller := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					o, err := repo.CreateOrder(t.Context(), items)
					if err != nil {
						t.Errorf("create order failed: %v", err)
						return
					}
					mu.Lock()
					numbers[o.Number] = struct{}{}
					perCaller[caller] = append(perCaller[caller], o.Number)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		for caller, own := range perCaller {
			require.True(t, slices.IsSorted(own), "caller %d got numbers out of order: %v", caller, own)
		}

		require.Len(t, numbers, 100)
	})

	t.Run("concurrent packers transition once", func(t *testing.T) {
		repo := NewStorage(pg.Pool).Order()
		o, err := repo.CreateOrder(t.Context(), items)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0

		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.UpdateStatus(t.Context(), o.Number, models.OrderStatusPlaced, models.OrderStatusPacked)
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, succeeded)
	})
}
