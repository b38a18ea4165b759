package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/remote"
	"github.com/nkiryanov/ministore/internal/service/packing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("packer stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// run connects the packing station to ministore and serves operator commands until quit, EOF or ctx cancellation
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string, in io.Reader, out io.Writer) error {
	c := NewConfig()

	if err := c.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("error while loading .env: %w", err)
	}
	if err := c.LoadEnv(getenv); err != nil {
		return err
	}
	if err := c.ParseFlags(args); err != nil {
		return err
	}

	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return fmt.Errorf("can't initialize logger: %w", err)
	}

	facade := remote.NewFacade(remote.NewHTTPDialer(c.ServerAddr, c.ServiceName, remote.DefaultTimeout), l)

	console := NewConsole(out, facade)
	coordinator := packing.NewCoordinator(facade, console, c.PollInterval, l)
	console.coordinator = coordinator

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.Info("Packing station started", "server", c.ServerAddr, "service", c.ServiceName, "poll_interval", c.PollInterval)
	done := coordinator.Run(ctx)

	err = console.Serve(ctx, in)

	cancel()
	<-done

	if o, ok := coordinator.Abandon(); ok {
		l.Info("Order left in queue", "number", o.Number)
	}
	l.Info("Packing station stopped")
	return err
}
