package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
)

// productRow is locked on its own, so operations on different products never wait for each other
type productRow struct {
	mu        sync.Mutex
	product   models.Product
	imagePath string

	// Set under both locks when the row leaves the table
	deleted bool
}

// StockRepo keeps products in a map of individually locked rows
// mu guards only the map itself; lock order is mu, then row
type StockRepo struct {
	mu   sync.RWMutex
	rows map[string]*productRow
}

func NewStockRepo(seed ...models.Product) *StockRepo {
	r := &StockRepo{rows: make(map[string]*productRow, len(seed))}
	for _, p := range seed {
		r.rows[p.Number] = &productRow{product: p, imagePath: "images/pic" + p.Number + ".png"}
	}
	return r
}

func (r *StockRepo) Exists(_ context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rows[number]
	return ok, nil
}

func (r *StockRepo) GetProduct(_ context.Context, number string) (models.Product, error) {
	var p models.Product
	err := r.withRow(number, func(row *productRow) {
		p = row.product
	})
	return p, err
}

func (r *StockRepo) ListProducts(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	rows := make([]*productRow, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	r.mu.RUnlock()

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		row.mu.Lock()
		if !row.deleted {
			products = append(products, row.product)
		}
		row.mu.Unlock()
	}

	slices.SortFunc(products, func(a, b models.Product) int {
		return strings.Compare(a.Number, b.Number)
	})
	return products, nil
}

func (r *StockRepo) GetImagePath(_ context.Context, number string) (string, error) {
	var path string
	err := r.withRow(number, func(row *productRow) {
		path = row.imagePath
	})
	return path, err
}

func (r *StockRepo) SetImagePath(_ context.Context, number string, path string) error {
	return r.withRow(number, func(row *productRow) {
		row.imagePath = path
	})
}

func (r *StockRepo) BuyStock(_ context.Context, number string, amount int) (bool, error) {
	bought := false
	err := r.withRow(number, func(row *productRow) {
		if row.product.Quantity >= amount {
			row.product.Quantity -= amount
			bought = true
		}
	})
	return bought, err
}

func (r *StockRepo) AddStock(_ context.Context, number string, amount int) error {
	return r.withRow(number, func(row *productRow) {
		row.product.Quantity += amount
	})
}

func (r *StockRepo) SetStock(_ context.Context, number string, quantity int) error {
	return r.withRow(number, func(row *productRow) {
		row.product.Quantity = quantity
	})
}

// UpsertProduct keeps image path of an existing product
func (r *StockRepo) UpsertProduct(_ context.Context, p models.Product, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.rows[p.Number]; ok {
		row.mu.Lock()
		row.product = p
		row.mu.Unlock()
		return nil
	}

	r.rows[p.Number] = &productRow{product: p, imagePath: imagePath}
	return nil
}

func (r *StockRepo) CreateProduct(_ context.Context, p models.Product, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[p.Number]; ok {
		return apperrors.ErrProductAlreadyExists
	}
	r.rows[p.Number] = &productRow{product: p, imagePath: imagePath}
	return nil
}

func (r *StockRepo) DeleteProduct(_ context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[number]
	if !ok {
		return apperrors.ErrProductNotFound
	}

	row.mu.Lock()
	row.deleted = true
	row.mu.Unlock()

	delete(r.rows, number)
	return nil
}

// withRow runs fn holding the row lock only
func (r *StockRepo) withRow(number string, fn func(row *productRow)) error {
	r.mu.RLock()
	row, ok := r.rows[number]
	r.mu.RUnlock()
	if !ok {
		return apperrors.ErrProductNotFound
	}

	row.mu.Lock()
	defer row.mu.Unlock()

	// Deleted between map lookup and row lock
	if row.deleted {
		return apperrors.ErrProductNotFound
	}
	fn(row)
	return nil
}
