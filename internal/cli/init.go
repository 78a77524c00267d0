// Package cli holds the start-up steps shared by the server and worker binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error; the environment wins over the file.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL / LOG_FORMAT style
// settings and installs it as the slog default.
func SetupLogger(level, format, component string) *applog.Logger {
	lc := applog.ConfigFrom(level, format)
	lc.Component = component
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// Setup loads configuration, configures logging and runs validate.
func Setup(component string, validate func(*config.Config) error) (*config.Config, *applog.Logger, error) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat, component)
	if err := validate(cfg); err != nil {
		return cfg, logger, err
	}
	return cfg, logger, nil
}

// LoadAndValidateConfig prepares the HTTP server. It exits the process on
// invalid configuration.
func LoadAndValidateConfig(component string) (*config.Config, *applog.Logger) {
	return mustSetup(component, (*config.Config).Validate)
}

// LoadAndValidateWorkerConfig prepares the mirror worker. It exits the
// process on invalid configuration.
func LoadAndValidateWorkerConfig(component string) (*config.Config, *applog.Logger) {
	return mustSetup(component, (*config.Config).ValidateWorker)
}

func mustSetup(component string, validate func(*config.Config) error) (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg, logger, err := Setup(component, validate)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
