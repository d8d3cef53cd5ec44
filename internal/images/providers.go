package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single provider lookup including the image download.
const DefaultTimeout = 10 * time.Second

const maxImageBytes = 20 << 20

// ProviderConfig configures an HTTP image provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

type httpProvider struct {
	name    string
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func newHTTPProvider(name, defaultBase string, cfg ProviderConfig) httpProvider {
	p := httpProvider{
		name:    name,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  cfg.Client,
	}
	if p.baseURL == "" {
		p.baseURL = defaultBase
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	return p
}

func (p httpProvider) Name() string { return p.name }

func (p httpProvider) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", p.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: unexpected status %d", p.name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.name, err)
	}
	return body, nil
}

func (p httpProvider) searchThenDownload(ctx context.Context, searchURL string, header http.Header, pick func([]byte) (string, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.get(ctx, searchURL, header)
	if err != nil {
		return nil, err
	}
	imageURL, err := pick(body)
	if err != nil {
		return nil, err
	}
	img, err := p.get(ctx, imageURL, nil)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrNoMatch)
	}
	return img, nil
}

// Pexels searches the Pexels photo API. The key is sent in the Authorization header.
type Pexels struct{ httpProvider }

// NewPexels constructs a Pexels provider.
func NewPexels(cfg ProviderConfig) *Pexels {
	return &Pexels{newHTTPProvider("pexels", "https://api.pexels.com/v1", cfg)}
}

func (p *Pexels) Fetch(ctx context.Context, query string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("pexels: api key not configured")
	}
	q := url.Values{"query": {query}, "per_page": {"1"}}
	header := http.Header{"Authorization": {p.apiKey}}
	return p.searchThenDownload(ctx, p.baseURL+"/search?"+q.Encode(), header, func(body []byte) (string, error) {
		var res struct {
			Photos []struct {
				Src struct {
					Medium string `json:"medium"`
				} `json:"src"`
			} `json:"photos"`
		}
		if err := json.Unmarshal(body, &res); err != nil {
			return "", fmt.Errorf("pexels: decode search: %w", err)
		}
		if len(res.Photos) == 0 || res.Photos[0].Src.Medium == "" {
			return "", fmt.Errorf("pexels: %w", ErrNoMatch)
		}
		return res.Photos[0].Src.Medium, nil
	})
}

// Pixabay searches the Pixabay API. The key is sent as a query parameter.
type Pixabay struct{ httpProvider }

// NewPixabay constructs a Pixabay provider.
func NewPixabay(cfg ProviderConfig) *Pixabay {
	return &Pixabay{newHTTPProvider("pixabay", "https://pixabay.com/api", cfg)}
}

func (p *Pixabay) Fetch(ctx context.Context, query string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("pixabay: api key not configured")
	}
	q := url.Values{"key": {p.apiKey}, "q": {query}, "image_type": {"photo"}, "per_page": {"3"}}
	return p.searchThenDownload(ctx, p.baseURL+"/?"+q.Encode(), nil, func(body []byte) (string, error) {
		var res struct {
			Hits []struct {
				WebformatURL string `json:"webformatURL"`
			} `json:"hits"`
		}
		if err := json.Unmarshal(body, &res); err != nil {
			return "", fmt.Errorf("pixabay: decode search: %w", err)
		}
		if len(res.Hits) == 0 || res.Hits[0].WebformatURL == "" {
			return "", fmt.Errorf("pixabay: %w", ErrNoMatch)
		}
		return res.Hits[0].WebformatURL, nil
	})
}

// Unsplash fetches a random matching photo from the keyless Unsplash source endpoint.
type Unsplash struct{ httpProvider }

// NewUnsplash constructs an Unsplash provider.
func NewUnsplash(cfg ProviderConfig) *Unsplash {
	return &Unsplash{newHTTPProvider("unsplash", "https://source.unsplash.com", cfg)}
}

func (p *Unsplash) Fetch(ctx context.Context, query string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	img, err := p.get(ctx, p.baseURL+"/800x600/?"+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("unsplash: %w", ErrNoMatch)
	}
	return img, nil
}
