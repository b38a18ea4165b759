package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/models"
	"github.com/nkiryanov/ministore/internal/service/checkout"
)

// Time given to return the basket to stock when the till is closed
const releaseTimeout = 5 * time.Second

type catalog interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
}

const helpText = `Commands:
  products       list all products
  check N        show product N with stock level
  buy N Q        put Q units of product N into the basket
  undo           return the last basket line
  remove N [Q]   return Q (or all) units of product N
  cancel         return the whole basket
  basket         show the basket
  purchase       place the basket as an order
  help           show this help
  quit           close the till, unpaid basket is returned`

type Console struct {
	out     io.Writer
	session *checkout.Session
	catalog catalog
}

func NewConsole(out io.Writer, session *checkout.Session, catalog catalog) *Console {
	return &Console{out: out, session: session, catalog: catalog}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Serve executes commands read from in until quit, EOF or ctx cancellation
// Whatever is left in the basket is returned to stock before Serve returns
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

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case line, ok := <-lines:
			if !ok {
				select {
				case err = <-readErr:
				default:
				}
				break loop
			}
			if quit := c.execute(ctx, line); quit {
				break loop
			}
		}
	}

	return errors.Join(err, c.close(ctx))
}

// close returns the unpaid basket even when ctx is already cancelled
func (c *Console) close(ctx context.Context) error {
	if c.session.Basket().IsEmpty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := c.session.Cancel(ctx); err != nil {
		return fmt.Errorf("can't return basket to stock: %w", err)
	}
	c.printf("Basket returned to stock\n")
	return nil
}

func (c *Console) execute(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "products":
		products, err := c.catalog.GetProducts(ctx)
		if err != nil {
			c.printf("Can't list products: %v\n", err)
			return false
		}
		for _, p := range products {
			c.printProduct(p)
		}

	case "check":
		if len(args) != 1 {
			c.printf("Usage: check N\n")
			return false
		}
		p, err := c.session.Check(ctx, args[0])
		if err != nil {
			c.printf("Can't check %s: %v\n", args[0], err)
			return false
		}
		c.printProduct(p)

	case "buy":
		if len(args) != 2 {
			c.printf("Usage: buy N Q\n")
			return false
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			c.printf("Quantity must be an integer\n")
			return false
		}
		bought, err := c.session.Buy(ctx, args[0], qty)
		switch {
		case err != nil:
			c.printf("Can't buy %s: %v\n", args[0], err)
		case !bought:
			c.printf("Not enough stock of %s\n", args[0])
		default:
			c.printf("Added %d of %s\n", qty, args[0])
		}

	case "undo":
		p, ok, err := c.session.RemoveLast(ctx)
		switch {
		case err != nil:
			c.printf("Can't undo: %v\n", err)
		case !ok:
			c.printf("Basket is empty\n")
		default:
			c.printf("Returned %d of %s\n", p.Quantity, p.Number)
		}

	case "remove":
		c.remove(ctx, args)

	case "cancel":
		if err := c.session.Cancel(ctx); err != nil {
			c.printf("Basket partially returned: %v\n", err)
			return false
		}
		c.printf("Basket cancelled\n")

	case "basket":
		c.printf("%s", c.session.Details())

	case "purchase":
		purchased, err := c.session.Purchase(ctx)
		if err != nil {
			c.printf("Can't place order: %v\n", err)
			return false
		}
		c.printf("%s", purchased.Details())

	case "help":
		c.printf("%s\n", helpText)

	case "quit", "exit":
		return true

	default:
		c.printf("Unknown command %q, type help\n", cmd)
	}

	return false
}

func (c *Console) remove(ctx context.Context, args []string) {
	var (
		released int
		err      error
	)

	switch len(args) {
	case 1:
		released, err = c.session.Remove(ctx, args[0])
	case 2:
		qty, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			c.printf("Quantity must be an integer\n")
			return
		}
		released, err = c.session.RemoveQuantity(ctx, args[0], qty)
	default:
		c.printf("Usage: remove N [Q]\n")
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidQuantity):
		c.printf("Quantity must be positive\n")
	case err != nil:
		c.printf("Can't remove %s: %v\n", args[0], err)
	case released == 0:
		c.printf("No %s in basket\n", args[0])
	default:
		c.printf("Returned %d of %s\n", released, args[0])
	}
}

func (c *Console) printProduct(p models.Product) {
	c.printf("%-7s%-20.20s £%7s  in stock: %d\n", p.Number, p.Description, p.Price.StringFixed(2), p.Quantity)
}
