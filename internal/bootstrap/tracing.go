package bootstrap

import (
	"context"
	"log/slog"

	"github.com/target/deckgen/config"
	"github.com/target/deckgen/internal/observability/tracing"
)

// InitTracing installs the tracer provider described by cfg and returns its shutdown hook.
func InitTracing(ctx context.Context, cfg config.ObservabilityTracingConfig, version string, logger *slog.Logger) (func(context.Context) error, error) {
	return tracing.Init(ctx, logger, tracing.Config{
		Enabled:     cfg.Enabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     version,
		Endpoint:    cfg.Endpoint,
		Insecure:    cfg.Insecure,
		Headers:     cfg.Headers,
		SampleRatio: cfg.SampleRatio,
	})
}
