package bootstrap

import (
	"fmt"

	coreconfig "github.com/m3rciful/anonrelay/core/config"
	"github.com/m3rciful/anonrelay/core/logger"
	"github.com/m3rciful/anonrelay/core/metrics"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// ServeMetrics starts the metrics endpoint; defaults to metrics.Serve.
	ServeMetrics func(addr string) *metrics.Server
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Metrics *metrics.Server
}

// Run initializes the logger, registers metrics, and starts the metrics endpoint when configured.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	metrics.Register()
	serve := opts.ServeMetrics
	if serve == nil {
		serve = metrics.Serve
	}
	return &Result{Metrics: serve(opts.Config.Metrics.Listen)}, nil
}
