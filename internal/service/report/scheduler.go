package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nkiryanov/ministore/internal/logger"
)

// Default schedule: every hour at minute 0
const DefaultSchedule = "0 * * * *"

const runTimeout = time.Minute

// Scheduler logs low stock report on cron schedule
type Scheduler struct {
	cron     *cron.Cron
	report   *Service
	schedule string
	logger   logger.Logger
}

func NewScheduler(report *Service, schedule string, l logger.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	return &Scheduler{
		cron:     cron.New(),
		report:   report,
		schedule: schedule,
		logger:   l,
	}
}

// Start schedules the report, fails if schedule is not a valid 5-field cron expression
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		return fmt.Errorf("invalid low stock schedule %q: %w", s.schedule, err)
	}

	s.logger.Info("Starting low stock scheduler", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops scheduling, returned context is done when running report finishes
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping low stock scheduler")
	return s.cron.Stop()
}

// Run builds report once and logs every product that runs low
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	low, err := s.report.LowStock(ctx)
	if err != nil {
		s.logger.Error("Failed to build low stock report", "error", err)
		return
	}

	for _, p := range low {
		s.logger.Warn("Product runs low", "product", p.Number, "description", p.Description, "quantity", p.Quantity)
	}
	s.logger.Info("Low stock report done", "threshold", s.report.Threshold(), "low", len(low))
}
