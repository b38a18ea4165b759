package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/service/report"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultImageDir     = "."
	defaultServiceName  = "ministore"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	// Empty means in-memory storage seeded with the default catalogue
	DatabaseDSN string

	// Directory product image paths are resolved against
	ImageDir string

	// Name the service answers to on lookup
	ServiceName string

	// Cron schedule (5 fields) of the low stock report
	LowStockSchedule string

	// Products with stock level below it are reported
	LowStockThreshold int

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		ImageDir:          defaultImageDir,
		ServiceName:       defaultServiceName,
		LowStockSchedule:  report.DefaultSchedule,
		LowStockThreshold: report.DefaultLowStockThreshold,
		Environment:       defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}

	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"DATABASE_URI":        setString(&c.DatabaseDSN),
		"IMAGE_DIR":           setString(&c.ImageDir),
		"SERVICE_NAME":        setString(&c.ServiceName),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"ENVIRONMENT":         setString(&c.Environment),
		"LOW_STOCK_SCHEDULE":  setString(&c.LowStockSchedule),
		"LOW_STOCK_THRESHOLD": setInt(&c.LowStockThreshold),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("ministore", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string, in-memory storage if empty")
	fs.StringVarP(&c.ImageDir, "images", "i", c.ImageDir, "Directory product images are resolved against")
	fs.StringVarP(&c.ServiceName, "name", "n", c.ServiceName, "Service name answered on lookup")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")
	fs.StringVarP(&c.LowStockSchedule, "low-stock-schedule", "c", c.LowStockSchedule, "Cron schedule of low stock report")
	fs.IntVarP(&c.LowStockThreshold, "low-stock-threshold", "t", c.LowStockThreshold, "Stock level products are reported below")

	return fs.Parse(args)
}
