// Package images resolves illustrative images for slides from stock photo providers.
package images

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/observability/metrics"
	"github.com/target/deckgen/internal/observability/statsd"
)

// ErrNoMatch is returned by providers that found nothing for a query.
var ErrNoMatch = core.ErrNoImage

// ResolverOptions groups dependencies for Resolver.
type ResolverOptions struct {
	Providers []core.ImageProvider // Tried in order
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// Resolver tries each provider in order and returns the first image found.
type Resolver struct {
	providers []core.ImageProvider
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewResolver constructs a Resolver. A resolver with no providers never finds an image.
func NewResolver(opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		providers: opts.Providers,
		logger:    logger.With("component", "image_resolver"),
		metrics:   opts.Metrics,
	}
}

// Resolve returns normalized image bytes for query. Provider failures are logged
// and the next provider is tried; false means no provider produced an image.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]byte, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}
	for _, p := range r.providers {
		if ctx.Err() != nil {
			return nil, false
		}
		start := time.Now()
		raw, err := p.Fetch(ctx, query)
		if err == nil {
			raw, err = Normalize(raw)
		}
		if err == nil {
			metrics.Emit(r.metrics, metrics.StageMetric{
				Stage: metrics.StageImage, Result: metrics.ResultSuccess,
				Provider: p.Name(), Duration: time.Since(start),
			})
			return raw, true
		}

		result := metrics.ResultError
		if errors.Is(err, ErrNoMatch) {
			result = metrics.ResultMiss
		}
		metrics.Emit(r.metrics, metrics.StageMetric{
			Stage: metrics.StageImage, Result: result,
			Provider: p.Name(), Duration: time.Since(start), Err: err,
		})
		r.logger.WarnContext(ctx, "image provider failed",
			"provider", p.Name(), "query", query, "error", err)
	}
	return nil, false
}
