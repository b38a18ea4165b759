package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/models"
)

type coordinator interface {
	Pack(ctx context.Context) (models.Order, error)
	Abandon() (models.Order, bool)
	Current() (models.Order, bool)
}

type collectionDesk interface {
	MarkCollected(ctx context.Context, number int64) error
	SnapshotByState(ctx context.Context) (map[string][]int64, error)
}

const helpText = `Commands:
  pack         confirm the shown order is packed
  abandon      put the shown order back, it stays in the queue
  show         show the order being packed
  collect N    hand packed order N to the customer
  states       list orders by state
  help         show this help
  quit         stop packing`

// Console prints what the packing station shows and executes operator commands
// It is the coordinator listener, so output from polling and commands is serialized
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	idle bool

	coordinator coordinator
	desk        collectionDesk
}

func NewConsole(out io.Writer, desk collectionDesk) *Console {
	return &Console{out: out, desk: desk}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) OrderHeld(o models.Order) {
	c.mu.Lock()
	c.idle = false
	c.mu.Unlock()

	c.printf("Pack order:\n%s\n", basket.FromOrder(o).Details())
}

// Idle is reported once until the next order is held
func (c *Console) Idle() {
	c.mu.Lock()
	wasIdle := c.idle
	c.idle = true
	c.mu.Unlock()

	if !wasIdle {
		c.printf("No orders to pack\n")
	}
}

// Serve executes commands read from in until quit, EOF or ctx cancellation
func (c *Console) Serve(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.printf("%s\n", helpText)

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.execute(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) execute(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "pack":
		o, err := c.coordinator.Pack(ctx)
		if err != nil {
			c.printf("Can't pack: %v\n", err)
			return false
		}
		c.printf("Order %03d packed\n", o.Number)

	case "abandon":
		if o, ok := c.coordinator.Abandon(); ok {
			c.printf("Order %03d put back\n", o.Number)
		} else {
			c.printf("Nothing to abandon\n")
		}

	case "show":
		if o, ok := c.coordinator.Current(); ok {
			c.printf("%s\n", basket.FromOrder(o).Details())
		} else {
			c.printf("No order held\n")
		}

	case "collect":
		if len(fields) != 2 {
			c.printf("Usage: collect N\n")
			return false
		}
		number, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			c.printf("Order number must be an integer\n")
			return false
		}
		if err := c.desk.MarkCollected(ctx, number); err != nil {
			c.printf("Can't collect order %03d: %v\n", number, err)
			return false
		}
		c.printf("Order %03d collected\n", number)

	case "states":
		snapshot, err := c.desk.SnapshotByState(ctx)
		if err != nil {
			c.printf("Can't list orders: %v\n", err)
			return false
		}
		for _, status := range models.OrderStatuses {
			c.printf("%-10s %v\n", status, snapshot[status])
		}

	case "help":
		c.printf("%s\n", helpText)

	case "quit", "exit":
		return true

	default:
		c.printf("Unknown command %q, type help\n", fields[0])
	}

	return false
}
