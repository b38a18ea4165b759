// Package packing runs the packing worker: it polls the order queue, holds at most one
// order for the packer and marks it packed on confirmation.
//
// One Coordinator serves one packing station. Several coordinators polling the same queue
// may show the same order; only the first MarkPacked succeeds, the others get
// ErrOrderInvalidTransition and have to Abandon the order.
package packing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

const DefaultInterval = 2 * time.Second

// Returned by Pack while the held order is already being marked packed
var ErrPackInProgress = errors.New("order is being packed")

type Queue interface {
	NextUnpacked(ctx context.Context) (models.Order, bool, error)
	MarkPacked(ctx context.Context, number int64) error
}

// Listener is told what the station shows
// Called from the polling goroutine
type Listener interface {
	OrderHeld(o models.Order)
	Idle()
}

type Coordinator struct {
	queue    Queue
	listener Listener
	logger   logger.Logger
	interval time.Duration

	slot Slot

	// Never held while the queue is called
	mu      sync.Mutex
	current *models.Order
	packing bool
}

func NewCoordinator(queue Queue, listener Listener, interval time.Duration, l logger.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Coordinator{
		queue:    queue,
		listener: listener,
		logger:   l,
		interval: interval,
	}
}

// Run polls the queue every interval until ctx is done
// Returned channel is closed when the loop has exited
func (c *Coordinator) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	c.logger.Debug("Starting packing coordinator", "interval", c.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.logger.Debug("Packing coordinator stopped by context")
				return

			case <-ticker.C:
				c.Poll(ctx)
			}
		}
	}()

	return idleStopped
}

// Poll makes one attempt to take the next order
// Does nothing while an order is held
func (c *Coordinator) Poll(ctx context.Context) {
	if !c.slot.Claim() {
		return
	}

	o, ok, err := c.queue.NextUnpacked(ctx)
	switch {
	case err != nil:
		c.logger.Error("Failed to fetch next order to pack", "error", err)
		c.slot.Free()

	case !ok:
		c.slot.Free()
		c.listener.Idle()

	default:
		c.mu.Lock()
		c.current = &o
		c.mu.Unlock()

		c.logger.Info("Order held for packing", "order", o.Number)
		c.listener.OrderHeld(o)
	}
}

// Pack marks the held order packed and frees the station
// On failure the order stays held, so Pack may be repeated or the order abandoned
func (c *Coordinator) Pack(ctx context.Context) (models.Order, error) {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return models.Order{}, apperrors.ErrNothingToPack
	}
	if c.packing {
		c.mu.Unlock()
		return models.Order{}, ErrPackInProgress
	}
	o := *c.current
	c.packing = true
	c.mu.Unlock()

	err := c.queue.MarkPacked(ctx, o.Number)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.packing = false

	if err != nil {
		c.logger.Error("Failed to mark order packed", "order", o.Number, "error", err)
		return models.Order{}, err
	}

	if c.current != nil && c.current.Number == o.Number {
		c.current = nil
		c.slot.Free()
	}

	c.logger.Info("Order packed", "order", o.Number)
	return o, nil
}

// Abandon drops the held order without packing it, it stays PLACED in the queue
// Refused while the order is being packed
func (c *Coordinator) Abandon() (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.packing {
		return models.Order{}, false
	}

	o := *c.current
	c.current = nil
	c.slot.Free()

	c.logger.Info("Order abandoned", "order", o.Number)
	return o, true
}

// Current returns the held order
func (c *Coordinator) Current() (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return models.Order{}, false
	}
	return *c.current, true
}
