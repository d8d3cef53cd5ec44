package config

import (
	"strings"
	"time"
)

// GenerationConfig configures the generative text backend for slide content and suggestions.
type GenerationConfig struct {
	// APIKey enables the OpenAI-compatible backend. Without it every deck uses fallback content
	// and suggestions are unavailable.
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL"`
	Model       string        `env:"OPENAI_MODEL"       envDefault:"gpt-4"`
	MaxTokens   int           `env:"OPENAI_MAX_TOKENS"  envDefault:"4000"`
	Temperature float32       `env:"OPENAI_TEMPERATURE" envDefault:"0.6"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT"     envDefault:"90s"`

	SuggestModel       string  `env:"OPENAI_SUGGEST_MODEL"       envDefault:"gpt-3.5-turbo"`
	SuggestMaxTokens   int     `env:"OPENAI_SUGGEST_MAX_TOKENS"  envDefault:"500"`
	SuggestTemperature float32 `env:"OPENAI_SUGGEST_TEMPERATURE" envDefault:"0.7"`

	// SuggestionCacheTTL is how long suggestion lists are reused.
	SuggestionCacheTTL time.Duration `env:"SUGGESTION_CACHE_TTL" envDefault:"1h"`
}

// Sanitize normalises generation settings.
func (g *GenerationConfig) Sanitize() {
	g.APIKey = strings.TrimSpace(g.APIKey)
	g.BaseURL = strings.TrimSpace(g.BaseURL)
	if g.Model = strings.TrimSpace(g.Model); g.Model == "" {
		g.Model = "gpt-4"
	}
	if g.SuggestModel = strings.TrimSpace(g.SuggestModel); g.SuggestModel == "" {
		g.SuggestModel = "gpt-3.5-turbo"
	}
	if g.MaxTokens <= 0 {
		g.MaxTokens = 4000
	}
	if g.SuggestMaxTokens <= 0 {
		g.SuggestMaxTokens = 500
	}
	g.Temperature = clampTemperature(g.Temperature)
	g.SuggestTemperature = clampTemperature(g.SuggestTemperature)
	if g.Timeout <= 0 {
		g.Timeout = 90 * time.Second
	}
	if g.SuggestionCacheTTL <= 0 {
		g.SuggestionCacheTTL = time.Hour
	}
}

// Enabled reports whether a generative text backend is configured.
func (g *GenerationConfig) Enabled() bool { return g.APIKey != "" }

func clampTemperature(t float32) float32 {
	return min(max(t, 0), 2)
}
