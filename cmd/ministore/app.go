package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nkiryanov/ministore/internal/db"
	"github.com/nkiryanov/ministore/internal/handlers"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/repository"
	"github.com/nkiryanov/ministore/internal/repository/memory"
	"github.com/nkiryanov/ministore/internal/repository/postgres"
	"github.com/nkiryanov/ministore/internal/service/order"
	"github.com/nkiryanov/ministore/internal/service/report"
	"github.com/nkiryanov/ministore/internal/service/stock"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	scheduler *report.Scheduler
	logger    logger.Logger
	close     func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Choose storage: postgres when configured, memory otherwise
	var storage repository.Storage
	closeStorage := func() {}

	if c.DatabaseDSN != "" {
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		storage = postgres.NewStorage(pool)
		closeStorage = pool.Close
	} else {
		l.Warn("No database configured, using in-memory storage")
		storage = memory.NewStorage(memory.DefaultProducts()...)
	}

	// Initialize services
	stockService := stock.NewService(storage.Stock(), os.DirFS(c.ImageDir), l)
	orderService := order.NewService(storage.Order())
	reportService := report.NewService(stockService, c.LowStockThreshold)

	mux := handlers.NewRouter(c.ServiceName, stockService, orderService, reportService, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		scheduler:  report.NewScheduler(reportService, c.LowStockSchedule, l),
		logger:     l,
		close:      closeStorage,
	}, nil
}

// Run starts http server and low stock scheduler, stops them gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	if err := s.scheduler.Start(); err != nil {
		return err
	}
	defer func() { <-s.scheduler.Stop().Done() }()

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
