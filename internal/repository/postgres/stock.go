package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
)

type StockRepo struct {
	DB DBTX
}

const existsProduct = `-- name: ExistsProduct
SELECT EXISTS (SELECT 1 FROM products WHERE product_no = $1)
`

func (r *StockRepo) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, existsProduct, number).Scan(&exists)
	if err != nil {
		return false, dbError(err)
	}

	return exists, nil
}

const getProduct = `-- name: GetProduct
SELECT p.product_no, p.description, p.price, s.stock_level
FROM products p
JOIN stock s ON s.product_no = p.product_no
WHERE p.product_no = $1
`

func (r *StockRepo) GetProduct(ctx context.Context, number string) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProduct, number)
	p, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, pgx.ErrNoRows):
		return p, apperrors.ErrProductNotFound
	default:
		return p, dbError(err)
	}
}

const listProducts = `-- name: ListProducts
SELECT p.product_no, p.description, p.price, s.stock_level
FROM products p
JOIN stock s ON s.product_no = p.product_no
ORDER BY p.product_no
`

func (r *StockRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, _ := r.DB.Query(ctx, listProducts)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, dbError(err)
	}

	return products, nil
}

const getImagePath = `-- name: GetImagePath
SELECT picture FROM products WHERE product_no = $1
`

func (r *StockRepo) GetImagePath(ctx context.Context, number string) (string, error) {
	var path string
	err := r.DB.QueryRow(ctx, getImagePath, number).Scan(&path)

	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, pgx.ErrNoRows):
		return "", apperrors.ErrProductNotFound
	default:
		return "", dbError(err)
	}
}

const setImagePath = `-- name: SetImagePath
UPDATE products SET picture = $2 WHERE product_no = $1
`

func (r *StockRepo) SetImagePath(ctx context.Context, number string, path string) error {
	return r.execOne(ctx, setImagePath, number, path)
}

// Single conditional statement: row lock taken by UPDATE serializes concurrent buyers,
// the second one re-evaluates 'stock_level >= $2' against the committed value
const buyStock = `-- name: BuyStock
UPDATE stock SET stock_level = stock_level - $2
WHERE product_no = $1 AND stock_level >= $2
`

func (r *StockRepo) BuyStock(ctx context.Context, number string, amount int) (bool, error) {
	tag, err := r.DB.Exec(ctx, buyStock, number, amount)
	if err != nil {
		return false, dbError(err)
	}

	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Nothing updated: either not enough stock or no such product
	exists, err := r.Exists(ctx, number)
	switch {
	case err != nil:
		return false, err
	case !exists:
		return false, apperrors.ErrProductNotFound
	default:
		return false, nil
	}
}

const addStock = `-- name: AddStock
UPDATE stock SET stock_level = stock_level + $2 WHERE product_no = $1
`

func (r *StockRepo) AddStock(ctx context.Context, number string, amount int) error {
	return r.execOne(ctx, addStock, number, amount)
}

const setStock = `-- name: SetStock
UPDATE stock SET stock_level = $2 WHERE product_no = $1
`

func (r *StockRepo) SetStock(ctx context.Context, number string, quantity int) error {
	return r.execOne(ctx, setStock, number, quantity)
}

const upsertProduct = `-- name: UpsertProduct
INSERT INTO products (product_no, description, picture, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_no) DO UPDATE
SET description = EXCLUDED.description, price = EXCLUDED.price
`

const upsertStock = `-- name: UpsertStock
INSERT INTO stock (product_no, stock_level)
VALUES ($1, $2)
ON CONFLICT (product_no) DO UPDATE
SET stock_level = EXCLUDED.stock_level
`

func (r *StockRepo) UpsertProduct(ctx context.Context, p models.Product, imagePath string) error {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertProduct, p.Number, p.Description, imagePath, p.Price); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, upsertStock, p.Number, p.Quantity)
		return err
	})
	if err != nil {
		return dbError(err)
	}

	return nil
}

const createProduct = `-- name: CreateProduct
INSERT INTO products (product_no, description, picture, price)
VALUES ($1, $2, $3, $4)
`

const createStock = `-- name: CreateStock
INSERT INTO stock (product_no, stock_level)
VALUES ($1, $2)
`

func (r *StockRepo) CreateProduct(ctx context.Context, p models.Product, imagePath string) error {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createProduct, p.Number, p.Description, imagePath, p.Price); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, createStock, p.Number, p.Quantity)
		return err
	})

	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperrors.ErrProductAlreadyExists
	default:
		return dbError(err)
	}
}

const deleteStock = `-- name: DeleteStock
DELETE FROM stock WHERE product_no = $1
`

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products WHERE product_no = $1
`

func (r *StockRepo) DeleteProduct(ctx context.Context, number string) error {
	var deleted int64
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteStock, number); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, deleteProduct, number)
		deleted = tag.RowsAffected()
		return err
	})

	switch {
	case err != nil:
		return dbError(err)
	case deleted == 0:
		return apperrors.ErrProductNotFound
	default:
		return nil
	}
}

// Execute statement that must touch exactly one product row
func (r *StockRepo) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := r.DB.Exec(ctx, sql, args...)

	switch {
	case err != nil:
		return dbError(err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrProductNotFound
	default:
		return nil
	}
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.Number, &p.Description, &p.Price, &p.Quantity)
	return p, err
}
