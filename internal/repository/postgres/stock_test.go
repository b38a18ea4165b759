package postgres

import (
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

func TestStock(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			fn(innerTx, NewStorage(innerTx))
		})
	}

	tv := models.Product{Number: "T001", Description: "Test TV", Price: decimal.RequireFromString("269.00"), Quantity: 5}

	t.Run("seeded products", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			p, err := storage.Stock().GetProduct(t.Context(), "0001")

			require.NoError(t, err, "seed migration must create product 0001")
			require.Equal(t, "40 inch LED HD TV", p.Description)
			require.Equal(t, 90, p.Quantity)
		})
	})

	t.Run("CreateProduct", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					err := storage.Stock().CreateProduct(t.Context(), tv, "images/picT001.png")
					require.NoError(t, err)

					got, err := storage.Stock().GetProduct(t.Context(), tv.Number)
					require.NoError(t, err)
					require.Equal(t, tv.Number, got.Number)
					require.Equal(t, tv.Description, got.Description)
					require.True(t, tv.Price.Equal(got.Price), "price must match, got %s", got.Price)
					require.Equal(t, tv.Quantity, got.Quantity)

					path, err := storage.Stock().GetImagePath(t.Context(), tv.Number)
					require.NoError(t, err)
					require.Equal(t, "images/picT001.png", path)
				})
			})

			t.Run("create twice", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					err := storage.Stock().CreateProduct(t.Context(), tv, "")
					require.NoError(t, err)

					err = storage.Stock().CreateProduct(t.Context(), tv, "")

					require.ErrorIs(t, err, apperrors.ErrProductAlreadyExists)
				})
			})
		})
	})

	t.Run("UpsertProduct", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("insert when absent", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					err := storage.Stock().UpsertProduct(t.Context(), tv, "images/placeholder.png")
					require.NoError(t, err)

					got, err := storage.Stock().GetProduct(t.Context(), tv.Number)
					require.NoError(t, err)
					require.Equal(t, 5, got.Quantity)
				})
			})

			t.Run("overwrite when present", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, storage repository.Storage) {
					err := storage.Stock().CreateProduct(t.Context(), tv, "images/picT001.png")
					require.NoError(t, err)

					changed := models.Product{Number: tv.Number, Description: "Other", Price: decimal.RequireFromString("1.00"), Quantity: 42}
					err = storage.Stock().UpsertProduct(t.Context(), changed, "images/placeholder.png")
					require.NoError(t, err)

					got, err := storage.Stock().GetProduct(t.Context(), tv.Number)
					require.NoError(t, err)
					require.Equal(t, "Other", got.Description)
					require.True(t, got.Price.Equal(decimal.RequireFromString("1.00")))
					require.Equal(t, 42, got.Quantity)

					path, err := storage.Stock().GetImagePath(t.Context(), tv.Number)
					require.NoError(t, err)
					require.Equal(t, "images/picT001.png", path, "upsert must not rebind image of existing product")
				})
			})
		})
	})

	t.Run("stock levels", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			repo := storage.Stock()
			require.NoError(t, repo.CreateProduct(t.Context(), tv, ""))

			bought, err := repo.BuyStock(t.Context(), tv.Number, 3)
			require.NoError(t, err)
			require.True(t, bought, "buy 3 of 5 must succeed")

			bought, err = repo.BuyStock(t.Context(), tv.Number, 3)
			require.NoError(t, err)
			require.False(t, bought, "buy 3 of 2 must fail")

			p, err := repo.GetProduct(t.Context(), tv.Number)
			require.NoError(t, err)
			require.Equal(t, 2, p.Quantity, "failed buy must not change stock")

			require.NoError(t, repo.AddStock(t.Context(), tv.Number, 10))
			p, err = repo.GetProduct(t.Context(), tv.Number)
			require.NoError(t, err)
			require.Equal(t, 12, p.Quantity)

			require.NoError(t, repo.SetStock(t.Context(), tv.Number, 0))
			p, err = repo.GetProduct(t.Context(), tv.Number)
			require.NoError(t, err)
			require.Equal(t, 0, p.Quantity)
		})
	})

	t.Run("not found", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			repo := storage.Stock()

			exists, err := repo.Exists(t.Context(), "NOPE")
			require.NoError(t, err)
			require.False(t, exists)

			_, err = repo.GetProduct(t.Context(), "NOPE")
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)

			_, err = repo.BuyStock(t.Context(), "NOPE", 1)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)

			require.ErrorIs(t, repo.AddStock(t.Context(), "NOPE", 1), apperrors.ErrProductNotFound)
			require.ErrorIs(t, repo.SetStock(t.Context(), "NOPE", 1), apperrors.ErrProductNotFound)
			require.ErrorIs(t, repo.SetImagePath(t.Context(), "NOPE", "x.png"), apperrors.ErrProductNotFound)
			require.ErrorIs(t, repo.DeleteProduct(t.Context(), "NOPE"), apperrors.ErrProductNotFound)

			_, err = repo.GetImagePath(t.Context(), "NOPE")
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("DeleteProduct", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			repo := storage.Stock()
			require.NoError(t, repo.CreateProduct(t.Context(), tv, ""))

			err := repo.DeleteProduct(t.Context(), tv.Number)
			require.NoError(t, err)

			exists, err := repo.Exists(t.Context(), tv.Number)
			require.NoError(t, err)
			require.False(t, exists)

			var stockRows int
			err = tx.QueryRow(t.Context(), "SELECT count(*) FROM stock WHERE product_no = $1", tv.Number).Scan(&stockRows)
			require.NoError(t, err)
			require.Zero(t, stockRows, "stock row must be deleted together with product")
		})
	})

	t.Run("ListProducts ordered by number", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			products, err := storage.Stock().ListProducts(t.Context())
			require.NoError(t, err)

			require.GreaterOrEqual(t, len(products), 7)
			for i := 1; i < len(products); i++ {
				require.Less(t, products[i-1].Number, products[i].Number)
			}
		})
	})

	t.Run("concurrent buys never oversell", func(t *testing.T) {
		// Run on pool (not transaction) so every buyer uses own connection
		repo := NewStorage(pg.Pool).Stock()
		p := models.Product{Number: "T900", Description: "Concurrent", Price: decimal.NewFromInt(1), Quantity: 10}
		require.NoError(t, repo.CreateProduct(t.Context(), p, ""))
		t.Cleanup(func() {
			_ = repo.DeleteProduct(t.Context(), p.Number)
		})

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0

		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.BuyStock(t.Context(), p.Number, 3)
				if err == nil && ok {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		got, err := repo.GetProduct(t.Context(), p.Number)
		require.NoError(t, err)
		require.Equal(t, 3, succeeded, "only three buys of 3 fit into 10")
		require.Equal(t, 1, got.Quantity)
	})
}
