package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/handlers/middleware"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

// Path the API is mounted on, returned by name lookup
const APIEndpoint = "/api/v1"

func NewRouter(
	serviceName string,
	stockService stockService,
	orderService orderService,
	reportService reportService,
	logger logger.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoggerMiddleware(logger))

	r.Get("/api/lookup/{name}", handleLookup(serviceName))

	r.Route(APIEndpoint, func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handleListProducts(stockService, logger))
			r.Post("/", handleAddProduct(stockService, logger))
			r.Post("/generated", handleNewProduct(stockService, logger))

			r.Route("/{num}", func(r chi.Router) {
				r.Get("/", handleGetProduct(stockService, logger))
				r.Put("/", handleModifyStock(stockService, logger))
				r.Delete("/", handleDeleteProduct(stockService, logger))
				r.Get("/exists", handleExists(stockService, logger))
				r.Get("/image", handleGetImage(stockService, logger))
				r.Put("/image", handleUpdateImage(stockService, logger))
				r.Post("/buy", handleBuyStock(stockService, logger))
				r.Post("/add", handleAddStock(stockService, logger))
				r.Put("/stock", handleSetStock(stockService, logger))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handleSubmit(orderService, logger))
			r.Get("/next", handleNextUnpacked(orderService, logger))
			r.Get("/states", handleSnapshot(orderService, logger))
			r.Get("/{num}", handleGetOrder(orderService, logger))
			r.Post("/{num}/packed", handleMarkPacked(orderService, logger))
			r.Post("/{num}/collected", handleMarkCollected(orderService, logger))
		})

		r.Get("/reports/low-stock", handleLowStock(reportService, logger))
	})

	return r
}

type stockService interface {
	Exists(ctx context.Context, number string) (bool, error)
	GetDetails(ctx context.Context, number string) (models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetImage(ctx context.Context, number string) ([]byte, error)
	UpdateProductImage(ctx context.Context, number string, path string) error
	BuyStock(ctx context.Context, number string, amount int) (bool, error)
	AddStock(ctx context.Context, number string, amount int) error
	SetStock(ctx context.Context, number string, quantity int) error
	ModifyStock(ctx context.Context, p models.Product) error
	AddProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, number string) error
	NewProduct(ctx context.Context, description string, price decimal.Decimal, quantity int) (models.Product, error)
}

type orderService interface {
	Submit(ctx context.Context, b *basket.Basket) (int64, error)
	NextUnpacked(ctx context.Context) (models.Order, bool, error)
	MarkPacked(ctx context.Context, number int64) error
	MarkCollected(ctx context.Context, number int64) error
	SnapshotByState(ctx context.Context) (map[string][]int64, error)
	GetOrder(ctx context.Context, number int64) (models.Order, error)
}

type reportService interface {
	LowStock(ctx context.Context) ([]models.Product, error)
	Threshold() int
}
