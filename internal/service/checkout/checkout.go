// Package checkout drives one cashier session: stock is bought from the ledger item by item,
// collected in a basket and finally submitted as an order.
//
// Units leaving the basket without purchase are returned to the ledger, so the basket
// always holds exactly the units reserved for it.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

type Ledger interface {
	GetDetails(ctx context.Context, number string) (models.Product, error)
	BuyStock(ctx context.Context, number string, amount int) (bool, error)
	AddStock(ctx context.Context, number string, amount int) error
}

type Queue interface {
	Submit(ctx context.Context, b *basket.Basket) (int64, error)
}

// Session is not safe for concurrent use
type Session struct {
	ledger Ledger
	queue  Queue
	logger logger.Logger

	basket *basket.Basket
}

func NewSession(ledger Ledger, queue Queue, l logger.Logger) *Session {
	return &Session{
		ledger: ledger,
		queue:  queue,
		logger: l,
		basket: basket.New(),
	}
}

// Check returns product details with current stock level
func (s *Session) Check(ctx context.Context, number string) (models.Product, error) {
	return s.ledger.GetDetails(ctx, number)
}

// Buy takes qty units from the ledger and appends them to the basket
// Returns false if there is not enough stock, basket stays unchanged then
func (s *Session) Buy(ctx context.Context, number string, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}

	p, err := s.ledger.GetDetails(ctx, number)
	if err != nil {
		return false, err
	}

	bought, err := s.ledger.BuyStock(ctx, number, qty)
	if err != nil || !bought {
		return false, err
	}

	p.Quantity = qty
	s.basket.Add(p)
	return true, nil
}

// RemoveLast returns the most recent line to the ledger
// ok is false if basket is empty
func (s *Session) RemoveLast(ctx context.Context) (p models.Product, ok bool, err error) {
	items := s.basket.Items()
	if len(items) == 0 {
		return models.Product{}, false, nil
	}

	last := items[len(items)-1]
	if err := s.release(ctx, last.Number, last.Quantity); err != nil {
		return models.Product{}, false, err
	}

	p, ok = s.basket.RemoveLastItem()
	return p, ok, nil
}

// Remove returns every unit of the product to the ledger
// Returns number of released units
func (s *Session) Remove(ctx context.Context, number string) (int, error) {
	units := s.basket.ProductQuantity(number)
	if units == 0 {
		return 0, nil
	}

	if err := s.release(ctx, number, units); err != nil {
		return 0, err
	}

	return s.basket.RemoveByProductNum(number), nil
}

// RemoveQuantity returns up to qty units of the product to the ledger
// Returns number of released units, it is less than qty if basket holds fewer
func (s *Session) RemoveQuantity(ctx context.Context, number string, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperrors.ErrInvalidQuantity
	}

	units := min(qty, s.basket.ProductQuantity(number))
	if units == 0 {
		return 0, nil
	}

	if err := s.release(ctx, number, units); err != nil {
		return 0, err
	}

	return s.basket.RemoveQuantityByProductNum(number, units), nil
}

// Cancel returns everything to the ledger and starts a fresh basket
// Lines that could not be returned stay in the basket, so Cancel may be repeated
func (s *Session) Cancel(ctx context.Context) error {
	var errs []error

	for _, line := range s.basket.Merged() {
		if err := s.release(ctx, line.Number, line.Quantity); err != nil {
			errs = append(errs, err)
			continue
		}
		s.basket.RemoveByProductNum(line.Number)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.basket = basket.New()
	return nil
}

// Purchase submits the basket as an order and starts a fresh one
// Returned basket carries the assigned order number
func (s *Session) Purchase(ctx context.Context) (*basket.Basket, error) {
	number, err := s.queue.Submit(ctx, s.basket)
	if err != nil {
		return nil, err
	}

	purchased := s.basket
	purchased.OrderNum = number
	s.basket = basket.New()

	s.logger.Info("Order placed", "order", number, "lines", purchased.Len())
	return purchased, nil
}

// Details renders the current basket as a receipt
func (s *Session) Details() string {
	return s.basket.Details()
}

func (s *Session) Basket() *basket.Basket {
	return s.basket
}

func (s *Session) release(ctx context.Context, number string, units int) error {
	if err := s.ledger.AddStock(ctx, number, units); err != nil {
		s.logger.Error("Failed to return stock", "product", number, "units", units, "error", err)
		return fmt.Errorf("return %d units of %s: %w", units, number, err)
	}
	return nil
}
