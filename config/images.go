package config

import (
	"strings"
	"time"
)

// ImagesConfig configures the image providers. Providers without credentials are skipped,
// except Unsplash which needs none.
type ImagesConfig struct {
	PexelsAPIKey    string        `env:"PEXELS_API_KEY"`
	PixabayAPIKey   string        `env:"PIXABAY_API_KEY"`
	UnsplashEnabled bool          `env:"UNSPLASH_ENABLED"  envDefault:"true"`
	UnsplashBaseURL string        `env:"UNSPLASH_BASE_URL" envDefault:"https://source.unsplash.com"`
	Timeout         time.Duration `env:"IMAGE_TIMEOUT"     envDefault:"10s"`
	// Concurrency bounds parallel image lookups within one deck.
	Concurrency int `env:"IMAGE_CONCURRENCY" envDefault:"4"`
}

// Sanitize normalises image provider settings.
func (c *ImagesConfig) Sanitize() {
	c.PexelsAPIKey = strings.TrimSpace(c.PexelsAPIKey)
	c.PixabayAPIKey = strings.TrimSpace(c.PixabayAPIKey)
	c.UnsplashBaseURL = strings.TrimRight(strings.TrimSpace(c.UnsplashBaseURL), "/")
	if c.UnsplashBaseURL == "" {
		c.UnsplashEnabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
}
