package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/service/packing"
)

const (
	defaultServerAddr   = "http://localhost:8000"
	defaultServiceName  = "ministore"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address of ministore server
	ServerAddr string

	// Name to look the service up by
	ServiceName string

	// How often the queue is polled for the next order
	PollInterval time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:     defaultLoggingLevel,
		ServerAddr:   defaultServerAddr,
		ServiceName:  defaultServiceName,
		PollInterval: packing.DefaultInterval,
		Environment:  defaultEnvironment,
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

	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"SERVER_ADDRESS": setString(&c.ServerAddr),
		"SERVICE_NAME":   setString(&c.ServiceName),
		"POLL_INTERVAL":  setDuration(&c.PollInterval),
		"LOG_LEVEL":      setString(&c.LogLevel),
		"ENVIRONMENT":    setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("packer", pflag.ContinueOnError)

	fs.StringVarP(&c.ServerAddr, "server", "s", c.ServerAddr, "ministore server address")
	fs.StringVarP(&c.ServiceName, "name", "n", c.ServiceName, "Service name to look up")
	fs.DurationVarP(&c.PollInterval, "poll-interval", "p", c.PollInterval, "Order queue poll interval")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")

	return fs.Parse(args)
}
