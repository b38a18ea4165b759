package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Facade forwards calls to the remote service and connects lazily
// Transport failure drops the connection, the next call dials again
// Domain errors are passed through and keep the connection
type Facade struct {
	dialer Dialer
	logger logger.Logger

	// Guards state and conn only, never held during forwarded call
	mu    sync.Mutex
	state State
	conn  Service
}

func NewFacade(dialer Dialer, l logger.Logger) *Facade {
	return &Facade{
		dialer: dialer,
		logger: l,
		state:  Disconnected,
	}
}

func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Facade) connection(ctx context.Context) (Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Connected {
		return f.conn, nil
	}

	conn, err := f.dialer.Dial(ctx)
	if err != nil {
		f.logger.Warn("Failed to connect to remote service", "error", err)
		if !errors.Is(err, apperrors.ErrCommunication) {
			err = fmt.Errorf("%w: %w", apperrors.ErrCommunication, err)
		}
		return nil, err
	}

	f.logger.Info("Connected to remote service")
	f.conn = conn
	f.state = Connected
	return conn, nil
}

// reset drops conn unless another caller has replaced it already
func (f *Facade) reset(conn Service, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Connected || f.conn != conn {
		return
	}

	f.logger.Warn("Lost connection to remote service", "error", cause)
	f.conn = nil
	f.state = Disconnected
}

func call[T any](ctx context.Context, f *Facade, fn func(Service) (T, error)) (T, error) {
	conn, err := f.connection(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	res, err := fn(conn)
	if errors.Is(err, apperrors.ErrCommunication) {
		f.reset(conn, err)
	}
	return res, err
}

func exec(ctx context.Context, f *Facade, fn func(Service) error) error {
	_, err := call(ctx, f, func(s Service) (struct{}, error) {
		return struct{}{}, fn(s)
	})
	return err
}

func (f *Facade) Exists(ctx context.Context, number string) (bool, error) {
	return call(ctx, f, func(s Service) (bool, error) { return s.Exists(ctx, number) })
}

func (f *Facade) GetDetails(ctx context.Context, number string) (models.Product, error) {
	return call(ctx, f, func(s Service) (models.Product, error) { return s.GetDetails(ctx, number) })
}

func (f *Facade) GetProducts(ctx context.Context) ([]models.Product, error) {
	return call(ctx, f, func(s Service) ([]models.Product, error) { return s.GetProducts(ctx) })
}

func (f *Facade) GetImage(ctx context.Context, number string) ([]byte, error) {
	return call(ctx, f, func(s Service) ([]byte, error) { return s.GetImage(ctx, number) })
}

func (f *Facade) UpdateProductImage(ctx context.Context, number string, path string) error {
	return exec(ctx, f, func(s Service) error { return s.UpdateProductImage(ctx, number, path) })
}

func (f *Facade) BuyStock(ctx context.Context, number string, amount int) (bool, error) {
	return call(ctx, f, func(s Service) (bool, error) { return s.BuyStock(ctx, number, amount) })
}

func (f *Facade) AddStock(ctx context.Context, number string, amount int) error {
	return exec(ctx, f, func(s Service) error { return s.AddStock(ctx, number, amount) })
}

func (f *Facade) SetStock(ctx context.Context, number string, quantity int) error {
	return exec(ctx, f, func(s Service) error { return s.SetStock(ctx, number, quantity) })
}

func (f *Facade) ModifyStock(ctx context.Context, p models.Product) error {
	return exec(ctx, f, func(s Service) error { return s.ModifyStock(ctx, p) })
}

func (f *Facade) AddProduct(ctx context.Context, p models.Product) error {
	return exec(ctx, f, func(s Service) error { return s.AddProduct(ctx, p) })
}

func (f *Facade) DeleteProduct(ctx context.Context, number string) error {
	return exec(ctx, f, func(s Service) error { return s.DeleteProduct(ctx, number) })
}

func (f *Facade) NewProduct(ctx context.Context, description string, price decimal.Decimal, quantity int) (models.Product, error) {
	return call(ctx, f, func(s Service) (models.Product, error) {
		return s.NewProduct(ctx, description, price, quantity)
	})
}

func (f *Facade) Submit(ctx context.Context, b *basket.Basket) (int64, error) {
	return call(ctx, f, func(s Service) (int64, error) { return s.Submit(ctx, b) })
}

func (f *Facade) NextUnpacked(ctx context.Context) (models.Order, bool, error) {
	type next struct {
		order models.Order
		ok    bool
	}

	res, err := call(ctx, f, func(s Service) (next, error) {
		o, ok, err := s.NextUnpacked(ctx)
		return next{o, ok}, err
	})
	return res.order, res.ok, err
}

func (f *Facade) MarkPacked(ctx context.Context, number int64) error {
	return exec(ctx, f, func(s Service) error { return s.MarkPacked(ctx, number) })
}

func (f *Facade) MarkCollected(ctx context.Context, number int64) error {
	return exec(ctx, f, func(s Service) error { return s.MarkCollected(ctx, number) })
}

func (f *Facade) SnapshotByState(ctx context.Context) (map[string][]int64, error) {
	return call(ctx, f, func(s Service) (map[string][]int64, error) { return s.SnapshotByState(ctx) })
}

func (f *Facade) GetOrder(ctx context.Context, number int64) (models.Order, error) {
	return call(ctx, f, func(s Service) (models.Order, error) { return s.GetOrder(ctx, number) })
}

var _ Service = (*Facade)(nil)
