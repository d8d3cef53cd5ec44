package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/deckgen/config"
)

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{name: "no services enabled", want: 0},
		{name: "http only", modes: []config.ServiceMode{config.ServiceModeHTTP}, want: 1},
		{name: "http and worker", modes: []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeWorker}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, m := range tt.modes {
				enabled[m] = true
			}
			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
		})
	}
}

func TestGetEnabledServices(t *testing.T) {
	cfg := &config.AppConfig{Services: "worker, http"}
	assert.Equal(t, []string{"http", "worker"}, GetEnabledServices(cfg))

	cfg.Services = "bogus"
	assert.Empty(t, GetEnabledServices(cfg))
	assert.Empty(t, GetEnabledServices(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestImageProvidersOrder(t *testing.T) {
	providers := imageProviders(config.ImagesConfig{
		PexelsAPIKey:    "p",
		PixabayAPIKey:   "x",
		UnsplashEnabled: true,
		UnsplashBaseURL: "https://source.unsplash.com",
	}, slog.Default())

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"pexels", "pixabay", "unsplash"}, names)

	assert.Empty(t, imageProviders(config.ImagesConfig{}, slog.Default()))
}

func TestBuildPublisherLocal(t *testing.T) {
	pub, closer, err := buildPublisher(context.Background(), config.StorageConfig{
		Backend:      config.StorageBackendLocal,
		LocalDir:     t.TempDir(),
		LocalBaseURL: "http://localhost:8080/files",
	}, slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, pub)
	assert.Nil(t, closer)

	_, _, err = buildPublisher(context.Background(), config.StorageConfig{Backend: "ftp"}, slog.Default())
	assert.Error(t, err)
}

func TestBuildFailureNotifier(t *testing.T) {
	disabled := buildFailureNotifier(slog.Default(), config.ObservabilityNotificationsConfig{}, "")
	assert.False(t, disabled.Enabled())

	enabled := buildFailureNotifier(slog.Default(), config.ObservabilityNotificationsConfig{
		Enabled: true,
		Slack: config.SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/T/B/X",
		},
	}, "https://decks.example.com")
	assert.True(t, enabled.Enabled())

	assert.Equal(t, "https://decks.example.com/api/v1/status/", statusURLPrefix("https://decks.example.com"))
	assert.Empty(t, statusURLPrefix(""))
}
