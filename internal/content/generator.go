// Package content turns a topic into an ordered list of slide records, using a
// text generation backend when available and a deterministic catalog otherwise.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/domain/model"
	"github.com/target/deckgen/internal/observability/metrics"
	"github.com/target/deckgen/internal/observability/statsd"
	"github.com/target/deckgen/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const systemPrompt = "You are an expert presentation designer with 10+ years creating executive-level " +
	"PowerPoint presentations. Focus on clarity, impact, and professional appeal."

// Config controls the primary generation path.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4",
		MaxTokens:   4000,
		Temperature: 0.6,
		Timeout:     90 * time.Second,
	}
}

// GeneratorOptions groups dependencies for Generator.
type GeneratorOptions struct {
	LLM     core.TextGenerator // Optional: nil always uses the fallback path
	Config  Config
	Logger  *slog.Logger
	Metrics statsd.Sink
	Catalog *Catalog
}

// Generator produces slide records for a topic. It never fails.
type Generator struct {
	llm     core.TextGenerator
	cfg     Config
	logger  *slog.Logger
	metrics statsd.Sink
	catalog *Catalog
}

// NewGenerator constructs a Generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	cfg := opts.Config
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Generator{
		llm:     opts.LLM,
		cfg:     cfg,
		logger:  logger.With("component", "content_generator"),
		metrics: opts.Metrics,
		catalog: catalog,
	}
}

// Generate returns up to slideCount slides for topic. Any failure of the
// primary path falls back to the deterministic catalog.
func (g *Generator) Generate(ctx context.Context, topic string, slideCount int) []model.SlideRecord {
	ctx, span := tracing.Start(ctx, "content.generate",
		attribute.String("topic", topic), attribute.Int("slide_count", slideCount))
	start := time.Now()

	slides, err := g.primary(ctx, topic, slideCount)
	if err == nil {
		metrics.Emit(g.metrics, metrics.StageMetric{
			Stage: metrics.StageGenerate, Result: metrics.ResultSuccess, Duration: time.Since(start),
		})
		span.SetAttributes(attribute.Bool("fallback", false))
		tracing.End(span, nil)
		return slides
	}

	g.logger.WarnContext(ctx, "content generation fell back to catalog",
		"topic", topic, "slide_count", slideCount, "error", err)
	metrics.Emit(g.metrics, metrics.StageMetric{
		Stage: metrics.StageGenerate, Result: metrics.ResultFallback, Duration: time.Since(start), Err: err,
	})
	span.SetAttributes(attribute.Bool("fallback", true))
	tracing.End(span, nil)
	return g.catalog.Fallback(topic, slideCount)
}

func (g *Generator) primary(ctx context.Context, topic string, slideCount int) ([]model.SlideRecord, error) {
	if g.llm == nil {
		return nil, fmt.Errorf("no text generator configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.llm.Complete(ctx, core.CompletionRequest{
		System:      systemPrompt,
		Prompt:      slidePrompt(topic, slideCount),
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	return Decode(text, topic, slideCount)
}

func slidePrompt(topic string, slideCount int) string {
	return fmt.Sprintf(`Create a professional presentation about "%s" with exactly %d slides.

Suggested structure: %s

Guidelines:
- Concise, action-oriented slide titles
- 3 to 5 bullet points per content slide, each under 15 words
- Use specific data points and examples where possible
- Choose image_query values that describe a relevant professional photo

Respond with JSON only, in this shape:
{
  "presentation_title": "string",
  "subtitle": "string",
  "slides": [
    {
      "title": "string",
      "content": ["bullet", "bullet"],
      "slide_type": "title|agenda|section|content",
      "layout": "content|two_column|agenda",
      "image_query": "string"
    }
  ]
}`, topic, slideCount, StructureHint(slideCount))
}
