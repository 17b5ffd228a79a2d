package cmd

import (
	"log/slog"
	"os"

	"github.com/Aman-CERP/ftmodel/internal/config"
	"github.com/Aman-CERP/ftmodel/internal/telemetry"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// dialBackend opens the Redis connection for cfg. Tests replace it.
var dialBackend = func(cfg *config.Config) (backend.Executor, func() error) {
	opts := []backend.RedisOption{
		backend.WithRetry(cfg.RetryPolicy()),
		backend.WithLogger(slog.Default()),
	}
	if cb := cfg.CircuitBreaker(); cb != nil {
		opts = append(opts, backend.WithCircuitBreaker(cb))
	}
	exec := backend.NewRedisExecutor(cfg.BackendConfig(), opts...)
	return exec, exec.Close
}

// app is the composed runtime shared by commands that reach the backend.
type app struct {
	cfg       *config.Config
	registry  *record.Registry
	exec      backend.Executor
	metrics   *telemetry.QueryMetrics
	collector *telemetry.Collector
	close     func() error
}

// loadConfig reads --config, or the layered user and project configuration.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

// openApp loads configuration and connects to the backend.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	raw, closer := dialBackend(cfg)
	a := &app{
		cfg:       cfg,
		registry:  reg,
		collector: telemetry.NewCollector(),
		close:     closer,
	}
	opts := []telemetry.ExecutorOption{telemetry.WithCollector(a.collector)}
	if cfg.Telemetry.Enabled {
		a.metrics = telemetry.NewQueryMetricsWithConfig(telemetry.QueryMetricsConfig{
			TopFieldsCapacity:   cfg.Telemetry.TopFields,
			ZeroResultsCapacity: cfg.Telemetry.ZeroResults,
		})
		opts = append(opts, telemetry.WithQueryMetrics(a.metrics))
	}
	a.exec = telemetry.Instrument(raw, opts...)

	slog.Debug("backend configured",
		slog.String("addr", cfg.Redis.Addr),
		slog.String("database", cfg.Database.Name),
		slog.Int("models", len(reg.Names())))
	return a, nil
}

func (a *app) repository(name string) (*record.Repository, error) {
	m, err := a.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return record.NewRepository(m, a.exec), nil
}

func (a *app) shutdown() {
	if a.close == nil {
		return
	}
	if err := a.close(); err != nil {
		slog.Debug("backend close failed", slog.String("error", err.Error()))
	}
}
