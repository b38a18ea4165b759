package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ministore/internal/handlers"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository"
	"github.com/nkiryanov/ministore/internal/repository/memory"
	"github.com/nkiryanov/ministore/internal/service/order"
	"github.com/nkiryanov/ministore/internal/service/report"
	"github.com/nkiryanov/ministore/internal/service/stock"
)

func noEnv(string) string { return "" }

func tempWd(t *testing.T) func() (string, error) {
	dir := t.TempDir()
	return func() (string, error) { return dir, nil }
}

func startStore(t *testing.T) (*httptest.Server, repository.Storage) {
	t.Helper()

	l := logger.NewNoOpLogger()
	storage := memory.NewStorage(memory.DefaultProducts()...)
	stockService := stock.NewService(storage.Stock(), fstest.MapFS{}, l)

	srv := httptest.NewServer(handlers.NewRouter("ministore", stockService, order.NewService(storage.Order()), report.NewService(stockService, 0), l))
	t.Cleanup(srv.Close)
	return srv, storage
}

func runScript(t *testing.T, serverURL string, script ...string) string {
	t.Helper()

	var out bytes.Buffer
	err := run(t.Context(), noEnv, tempWd(t), []string{"-s", serverURL, "-l", "error"}, strings.NewReader(strings.Join(script, "\n")), &out)
	require.NoError(t, err)

	return out.String()
}

func stockOf(t *testing.T, storage repository.Storage, number string) int {
	t.Helper()
	p, err := storage.Stock().GetProduct(t.Context(), number)
	require.NoError(t, err)
	return p.Quantity
}

func Test_run(t *testing.T) {
	t.Run("sell basket", func(t *testing.T) {
		srv, storage := startStore(t)

		out := runScript(t, srv.URL,
			"check 0004",
			"buy 0004 3",
			"buy 0007 2",
			"buy 0002 1",
			"remove 0002",
			"basket",
			"purchase",
			"quit",
		)

		require.Contains(t, out, "Watch")
		require.Contains(t, out, "in stock: 10")
		require.Contains(t, out, "Added 3 of 0004")
		require.Contains(t, out, "Not enough stock of 0007")
		require.Contains(t, out, "Returned 1 of 0002")
		require.Contains(t, out, "Order number: 001")
		require.NotContains(t, out, "Basket returned to stock", "purchased basket is not returned")

		require.Equal(t, 7, stockOf(t, storage, "0004"))
		require.Equal(t, 20, stockOf(t, storage, "0002"))
		require.Equal(t, 1, stockOf(t, storage, "0007"))

		placed, err := storage.Order().GetOrder(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, models.OrderStatusPlaced, placed.Status)
		require.Len(t, placed.Items, 1)
		require.Equal(t, 3, placed.Items[0].Quantity)
	})

	t.Run("unpaid basket returned on close", func(t *testing.T) {
		srv, storage := startStore(t)

		out := runScript(t, srv.URL, "buy 0006 5", "buy 0006 2", "undo")

		require.Contains(t, out, "Returned 2 of 0006")
		require.Contains(t, out, "Basket returned to stock")
		require.Equal(t, 15, stockOf(t, storage, "0006"))
	})

	t.Run("partial remove and cancel", func(t *testing.T) {
		srv, storage := startStore(t)

		out := runScript(t, srv.URL, "buy 0003 4", "remove 0003 1", "cancel", "basket", "quit")

		require.Contains(t, out, "Returned 1 of 0003")
		require.Contains(t, out, "Basket cancelled")
		require.Equal(t, 33, stockOf(t, storage, "0003"))
	})

	t.Run("operator mistakes", func(t *testing.T) {
		srv, _ := startStore(t)

		out := runScript(t, srv.URL,
			"check 9999",
			"check",
			"buy 0001 x",
			"buy 0001 -1",
			"remove 0001 0",
			"remove 0001",
			"undo",
			"bogus",
		)

		require.Contains(t, out, "Can't check 9999")
		require.Contains(t, out, "Usage: check N")
		require.Contains(t, out, "Quantity must be an integer")
		require.Contains(t, out, "Can't buy 0001")
		require.Contains(t, out, "Quantity must be positive")
		require.Contains(t, out, "No 0001 in basket")
		require.Contains(t, out, "Basket is empty")
		require.Contains(t, out, `Unknown command "bogus"`)
	})

	t.Run("products", func(t *testing.T) {
		srv, _ := startStore(t)

		out := runScript(t, srv.URL, "products")

		require.Contains(t, out, "40 inch LED HD TV")
		require.Contains(t, out, "32Gb USB2 drive")
	})

	t.Run("server unavailable", func(t *testing.T) {
		srv, _ := startStore(t)
		srv.Close()

		out := runScript(t, srv.URL, "check 0001")

		require.Contains(t, out, "Can't check 0001")
		require.Contains(t, out, "communication error")
	})

	t.Run("invalid config", func(t *testing.T) {
		err := run(t.Context(), noEnv, tempWd(t), []string{"--environment", "staging"}, strings.NewReader(""), &bytes.Buffer{})

		require.Error(t, err)
	})
}
