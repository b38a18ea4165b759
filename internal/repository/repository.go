package repository

import (
	"context"

	"github.com/nkiryanov/ministore/internal/models"
)

// Stock repository interface
// Every mutation of one product must be applied atomically relative to other mutations of the same product
type StockRepo interface {
	// Check the product row exists
	Exists(ctx context.Context, number string) (bool, error)

	// Get product with its stock level
	// If product not found must return apperrors.ErrProductNotFound
	GetProduct(ctx context.Context, number string) (models.Product, error)

	// List all products ordered by product number
	ListProducts(ctx context.Context) ([]models.Product, error)

	// Get image reference recorded against the product
	// If product not found must return apperrors.ErrProductNotFound
	GetImagePath(ctx context.Context, number string) (string, error)

	// Rebind image reference, stock level and price stay untouched
	// If product not found must return apperrors.ErrProductNotFound
	SetImagePath(ctx context.Context, number string, path string) error

	// Decrease stock level by amount only if it is not less than amount
	// Return false (and change nothing) if stock level is not enough
	// If product not found must return apperrors.ErrProductNotFound
	BuyStock(ctx context.Context, number string, amount int) (bool, error)

	// Increase stock level by amount
	// If product not found must return apperrors.ErrProductNotFound
	AddStock(ctx context.Context, number string, amount int) error

	// Set absolute stock level
	// If product not found must return apperrors.ErrProductNotFound
	SetStock(ctx context.Context, number string, quantity int) error

	// Insert product and stock rows, or overwrite description, price and stock level if product exists
	// imagePath is used for inserted rows only
	UpsertProduct(ctx context.Context, p models.Product, imagePath string) error

	// Insert product and stock rows
	// If product exists must return apperrors.ErrProductAlreadyExists
	CreateProduct(ctx context.Context, p models.Product, imagePath string) error

	// Delete product and its stock row in one transaction
	// If product not found must return apperrors.ErrProductNotFound
	DeleteProduct(ctx context.Context, number string) error
}

// Order repository interface
type OrderRepo interface {
	// Store order in PLACED status with next number of the order sequence
	// Numbers are unique and increase in submission order
	CreateOrder(ctx context.Context, items []models.Product) (models.Order, error)

	// Get order by its number
	// If order not found must return apperrors.ErrOrderNotFound
	GetOrder(ctx context.Context, number int64) (models.Order, error)

	// Get oldest (lowest number) order in the status
	// If there is no such order must return apperrors.ErrOrderNotFound
	GetOldest(ctx context.Context, status string) (models.Order, error)

	// Move order from one status to another
	// If order not exists or its status is not 'from' must return apperrors.ErrOrderInvalidTransition
	UpdateStatus(ctx context.Context, number int64, from string, to string) (models.Order, error)

	// Order numbers grouped by status, ascending
	ListNumbersByStatus(ctx context.Context) (map[string][]int64, error)
}

type Storage interface {
	Stock() StockRepo
	Order() OrderRepo
}
