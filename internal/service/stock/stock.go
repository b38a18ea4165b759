package stock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/repository"
)

const (
	// Image bound to rows created by ModifyStock
	PlaceholderImage = "images/placeholder.png"

	// How many times NewProduct regenerates number when it was taken by another process
	newProductAttempts = 3
)

// Image bound to rows created by AddProduct and NewProduct
func ProductImage(number string) string {
	return "images/pic" + number + ".png"
}

type Service struct {
	repo   repository.StockRepo
	images fs.FS
	logger logger.Logger

	// Serializes number generation of NewProduct within the process
	newProductMu sync.Mutex
}

// images is the root image paths are resolved against, may be nil if images are not served
func NewService(repo repository.StockRepo, images fs.FS, l logger.Logger) *Service {
	return &Service{
		repo:   repo,
		images: images,
		logger: l,
	}
}

func (s *Service) Exists(ctx context.Context, number string) (bool, error) {
	return s.repo.Exists(ctx, number)
}

func (s *Service) GetDetails(ctx context.Context, number string) (models.Product, error) {
	return s.repo.GetProduct(ctx, number)
}

func (s *Service) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// GetImage reads the file bound to the product
// Missing product gives ErrProductNotFound, unreadable file gives ErrImageUnavailable
func (s *Service) GetImage(ctx context.Context, number string) ([]byte, error) {
	path, err := s.repo.GetImagePath(ctx, number)
	if err != nil {
		return nil, err
	}

	if s.images == nil || !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrImageUnavailable, path)
	}

	data, err := fs.ReadFile(s.images, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrImageUnavailable, err)
	}

	return data, nil
}

func (s *Service) UpdateProductImage(ctx context.Context, number string, path string) error {
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: invalid path %q", apperrors.ErrImageUnavailable, path)
	}
	return s.repo.SetImagePath(ctx, number, path)
}

// BuyStock decreases stock level only if there is enough stock
// Returns false and changes nothing otherwise
func (s *Service) BuyStock(ctx context.Context, number string, amount int) (bool, error) {
	if amount < 0 {
		return false, apperrors.ErrInvalidQuantity
	}
	return s.repo.BuyStock(ctx, number, amount)
}

func (s *Service) AddStock(ctx context.Context, number string, amount int) error {
	if amount < 0 {
		return apperrors.ErrInvalidQuantity
	}
	return s.repo.AddStock(ctx, number, amount)
}

func (s *Service) SetStock(ctx context.Context, number string, quantity int) error {
	if quantity < 0 {
		return apperrors.ErrInvalidQuantity
	}
	return s.repo.SetStock(ctx, number, quantity)
}

// ModifyStock creates product or overwrites description, price and stock level of existed one
func (s *Service) ModifyStock(ctx context.Context, p models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.UpsertProduct(ctx, p, PlaceholderImage)
}

// AddProduct creates product, fails with ErrProductAlreadyExists if number is taken
func (s *Service) AddProduct(ctx context.Context, p models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.CreateProduct(ctx, p, ProductImage(p.Number))
}

func (s *Service) DeleteProduct(ctx context.Context, number string) error {
	return s.repo.DeleteProduct(ctx, number)
}

// NextProductNumber proposes the number following the greatest numeric product number
// Not reserved: another writer may take it before it is used
func (s *Service) NextProductNumber(ctx context.Context) (string, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return "", err
	}

	greatest := 0
	for _, p := range products {
		n, err := strconv.Atoi(p.Number)
		if err != nil {
			continue
		}
		greatest = max(greatest, n)
	}

	return fmt.Sprintf("%04d", greatest+1), nil
}

// NewProduct creates product with generated number
func (s *Service) NewProduct(ctx context.Context, description string, price decimal.Decimal, quantity int) (models.Product, error) {
	s.newProductMu.Lock()
	defer s.newProductMu.Unlock()

	for attempt := 1; ; attempt++ {
		number, err := s.NextProductNumber(ctx)
		if err != nil {
			return models.Product{}, err
		}

		p := models.Product{Number: number, Description: description, Price: price, Quantity: quantity}
		err = s.AddProduct(ctx, p)

		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, apperrors.ErrProductAlreadyExists) && attempt < newProductAttempts:
			s.logger.Warn("Generated product number already taken, retrying", "number", number, "attempt", attempt)
		default:
			return models.Product{}, err
		}
	}
}

func validateProduct(p models.Product) error {
	if p.Quantity < 0 {
		return apperrors.ErrInvalidQuantity
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", apperrors.ErrInvalidQuantity)
	}
	return nil
}
