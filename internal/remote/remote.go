// Package remote gives checkout and packing clients access to the stock ledger and the
// order queue served by ministore over HTTP.
package remote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/models"
)

// Request understood by the remote side as malformed (validation or decoding failed)
// Connection is fine, so it never resets the facade
var ErrRejected = errors.New("request rejected by remote service")

// Service is the ledger and order queue contract available remotely
type Service interface {
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

	Submit(ctx context.Context, b *basket.Basket) (int64, error)
	NextUnpacked(ctx context.Context) (models.Order, bool, error)
	MarkPacked(ctx context.Context, number int64) error
	MarkCollected(ctx context.Context, number int64) error
	SnapshotByState(ctx context.Context) (map[string][]int64, error)
	GetOrder(ctx context.Context, number int64) (models.Order, error)
}

// Dialer establishes connection to the remote service
// Has to return apperrors.ErrCommunication if the service can't be reached
type Dialer interface {
	Dial(ctx context.Context) (Service, error)
}
