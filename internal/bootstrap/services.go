package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/deckgen/config"
	"github.com/target/deckgen/internal/adapters/jobrunner"
	"github.com/target/deckgen/internal/adapters/llm"
	"github.com/target/deckgen/internal/content"
	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/data"
	"github.com/target/deckgen/internal/images"
	"github.com/target/deckgen/internal/observability/notify/slack"
	"github.com/target/deckgen/internal/observability/statsd"
	"github.com/target/deckgen/internal/pptx"
	"github.com/target/deckgen/internal/service"
	"github.com/target/deckgen/internal/service/failurenotifier"
	"github.com/target/deckgen/internal/storage"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Presentations *service.PresentationService
	Runner        *jobrunner.Runner
	Stores        Stores
	Observability ObservabilityContainer
	// closers release clients opened while building services.
	closers []io.Closer
}

// Stores groups the data adapters shared by the front-end and the worker.
type Stores struct {
	Jobs      *data.RedisJobStore
	Queue     *data.RedisWorkQueue
	Usage     *data.RedisUsageCounter
	Cache     *data.RedisCacheRepo
	Catalog   core.PresentationRepository // nil when the catalog is disabled
	Publisher core.Publisher
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     statsd.Sink
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB // Optional: nil disables the presentation catalog
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Close releases clients owned by the container.
func (c *ServiceContainer) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewServices wires every service the enabled modes need.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var container ServiceContainer
	container.Observability = buildObservability(logger, cfg)

	publisher, closer, err := buildPublisher(ctx, cfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	if closer != nil {
		container.closers = append(container.closers, closer)
	}
	container.Stores = buildStores(deps, publisher)

	var textGen core.TextGenerator
	if cfg.Generation.Enabled() {
		gen, err := llm.NewOpenAI(ctx, llm.Config{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Timeout: cfg.Generation.Timeout,
		})
		if err != nil {
			return ServiceContainer{}, errors.Join(err, container.Close())
		}
		textGen = gen
	} else {
		logger.InfoContext(ctx, "generative text disabled; decks use fallback content and suggestions are unavailable")
	}

	container.Presentations, err = newPresentationService(cfg, container.Stores, textGen, logger)
	if err != nil {
		return ServiceContainer{}, errors.Join(err, container.Close())
	}

	if cfg.IsWorkerEnabled() {
		container.Runner, err = newRunner(runnerDeps{
			cfg:    cfg,
			stores: container.Stores,
			llm:    textGen,
			obs:    container.Observability,
			logger: logger,
		})
		if err != nil {
			return ServiceContainer{}, errors.Join(err, container.Close())
		}
	}

	return container, nil
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg *config.AppConfig) ObservabilityContainer {
	obs := cfg.Observability
	var sink statsd.Sink
	if obs.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: obs.Metrics.StatsdAddress,
			Prefix:  obs.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			sink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     sink,
		MetricsConfig:   obs.Metrics,
		FailureNotifier: buildFailureNotifier(logger, obs.Notifications, cfg.HTTP.BaseURL),
		NotifierConfig:  obs.Notifications,
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig, baseURL string) *failurenotifier.Service {
	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{Logger: logger})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 1)
	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:      cfg.Slack.WebhookURL,
			Channel:         cfg.Slack.Channel,
			Username:        cfg.Slack.Username,
			Timeout:         cfg.Timeout,
			RetryLimit:      cfg.RetryLimit,
			StatusURLPrefix: statusURLPrefix(baseURL),
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:          logger,
		Sinks:           sinks,
		DeliveryTimeout: cfg.Timeout,
	})
}

func statusURLPrefix(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	return baseURL + "/api/v1/status/"
}

// buildPublisher selects the storage backend.
func buildPublisher(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (core.Publisher, io.Closer, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		pub, err := storage.NewLocalPublisher(cfg.LocalDir, cfg.LocalBaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("local storage: %w", err)
		}
		logger.InfoContext(ctx, "publishing decks to local storage", "dir", cfg.LocalDir)
		return pub, nil, nil
	case config.StorageBackendGCS:
		pub, err := storage.NewGCSPublisher(ctx, storage.GCSConfig{
			Bucket:          cfg.Bucket,
			PublicBaseURL:   cfg.PublicBaseURL,
			CredentialsJSON: cfg.CredentialsJSON,
			CredentialsFile: cfg.CredentialsFile,
			UploadTimeout:   cfg.UploadTimeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs storage: %w", err)
		}
		return pub, pub, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// buildStores builds the Redis and Postgres adapters; no business rules here.
func buildStores(deps *ServiceDeps, publisher core.Publisher) Stores {
	cfg := deps.Config
	st := Stores{
		Jobs: data.NewRedisJobStore(deps.RedisClient, data.JobStoreConfig{
			StatusTTL: cfg.Retention.StatusTTL,
			URLTTL:    cfg.Retention.URLTTL,
		}),
		Queue:     data.NewRedisWorkQueue(deps.RedisClient, cfg.Redis.QueueKey),
		Usage:     data.NewRedisUsageCounter(deps.RedisClient),
		Cache:     data.NewRedisCacheRepo(deps.RedisClient, cfg.Redis.CacheNamespace),
		Publisher: publisher,
	}
	if deps.DB != nil {
		st.Catalog = data.NewPresentationRepo(deps.DB)
	}
	return st
}

func newPresentationService(cfg *config.AppConfig, st Stores, textGen core.TextGenerator, logger *slog.Logger) (*service.PresentationService, error) {
	gen := cfg.Generation
	return service.NewPresentationService(service.PresentationServiceOptions{
		Stores: service.PresentationStores{
			Jobs:    st.Jobs,
			Queue:   st.Queue,
			Usage:   st.Usage,
			Catalog: st.Catalog,
			Storage: st.Publisher,
		},
		Limits: service.Limits{
			DailyLimit:        cfg.Limits.DailyLimit,
			MinTopicLength:    cfg.Limits.MinTopicLength,
			MinSlideCount:     cfg.Limits.MinSlideCount,
			MaxSlideCount:     cfg.Limits.MaxSlideCount,
			DefaultSlideCount: cfg.Limits.DefaultSlideCount,
		},
		KeyPrefix: cfg.Storage.KeyPrefix,
		LLM:       textGen,
		SuggestConfig: content.SuggestConfig{
			Model:       gen.SuggestModel,
			MaxTokens:   gen.SuggestMaxTokens,
			Temperature: gen.SuggestTemperature,
		},
		SuggestionCache: core.NewSuggestionCacheService(core.SuggestionCacheServiceOptions{
			Cache:  st.Cache,
			Config: core.SuggestionCacheConfig{TTL: gen.SuggestionCacheTTL},
		}),
		Logger: logger,
	})
}

type runnerDeps struct {
	cfg    *config.AppConfig
	stores Stores
	llm    core.TextGenerator
	obs    ObservabilityContainer
	logger *slog.Logger
}

// imageProviders returns the configured providers in lookup order.
func imageProviders(cfg config.ImagesConfig, logger *slog.Logger) []core.ImageProvider {
	var providers []core.ImageProvider
	if cfg.PexelsAPIKey != "" {
		providers = append(providers, images.NewPexels(images.ProviderConfig{APIKey: cfg.PexelsAPIKey, Timeout: cfg.Timeout}))
	}
	if cfg.PixabayAPIKey != "" {
		providers = append(providers, images.NewPixabay(images.ProviderConfig{APIKey: cfg.PixabayAPIKey, Timeout: cfg.Timeout}))
	}
	if cfg.UnsplashEnabled {
		providers = append(providers, images.NewUnsplash(images.ProviderConfig{BaseURL: cfg.UnsplashBaseURL, Timeout: cfg.Timeout}))
	}
	if len(providers) == 0 {
		logger.Warn("no image providers configured; decks will render without pictures")
	}
	return providers
}

func newRunner(d runnerDeps) (*jobrunner.Runner, error) {
	cfg := d.cfg
	resolver := images.NewResolver(images.ResolverOptions{
		Providers: imageProviders(cfg.Images, d.logger),
		Logger:    d.logger,
		Metrics:   d.obs.MetricsSink,
	})
	generator := content.NewGenerator(content.GeneratorOptions{
		LLM: d.llm,
		Config: content.Config{
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			Timeout:     cfg.Generation.Timeout,
		},
		Logger:  d.logger,
		Metrics: d.obs.MetricsSink,
	})
	assembler := pptx.NewAssembler(pptx.AssemblerOptions{
		Images: resolver,
		Config: pptx.Config{
			Build: pptx.BuildConfig{
				SectionInterval:  cfg.Assembly.SectionInterval,
				MaxSections:      cfg.Assembly.MaxSections,
				SectionMinSlides: cfg.Assembly.SectionMinSlides,
			},
			TempDir:          cfg.Storage.TempDir,
			ImageConcurrency: cfg.Images.Concurrency,
		},
		Logger: d.logger,
	})

	opts := jobrunner.RunnerOptions{
		Pipeline: jobrunner.Pipeline{Generator: generator, Assembler: assembler, Publisher: d.stores.Publisher},
		Stores: jobrunner.Stores{
			Jobs:    d.stores.Jobs,
			Queue:   d.stores.Queue,
			Usage:   d.stores.Usage,
			Catalog: d.stores.Catalog,
		},
		Retry:       jobrunner.RetryPolicy{MaxAttempts: cfg.Worker.MaxAttempts, Backoff: cfg.Worker.RetryBackoff},
		Concurrency: cfg.Worker.Concurrency,
		PollTimeout: cfg.Worker.PollTimeout,
		KeyPrefix:   cfg.Storage.KeyPrefix,
		Logger:      d.logger,
		Metrics:     d.obs.MetricsSink,
	}
	if d.obs.FailureNotifier != nil && d.obs.FailureNotifier.Enabled() {
		opts.FailureNotifier = d.obs.FailureNotifier
	}
	return jobrunner.NewRunner(opts)
}
