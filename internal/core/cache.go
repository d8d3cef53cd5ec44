// Package core defines the ports of the deck generation system and small services built on them.
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// CacheRepository is a byte-valued key/value cache with per-entry expiry.
type CacheRepository interface {
	// Set stores value under key. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil without error when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether key existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// SuggestionCacheService caches topic suggestions so repeated requests for the
// same topic do not hit the generative text service again.
type SuggestionCacheService struct {
	cache CacheRepository
	ttl   time.Duration
}

// SuggestionCacheConfig holds configuration for suggestion caching.
type SuggestionCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// SuggestionCacheServiceOptions bundles dependencies for NewSuggestionCacheService.
type SuggestionCacheServiceOptions struct {
	Cache  CacheRepository
	Config SuggestionCacheConfig
}

// SuggestionQuery identifies one suggestion request.
type SuggestionQuery struct {
	Topic    string
	Industry string
	Audience string
}

// DefaultSuggestionCacheConfig returns a SuggestionCacheConfig with sensible defaults.
func DefaultSuggestionCacheConfig() SuggestionCacheConfig {
	return SuggestionCacheConfig{TTL: time.Hour}
}

// NewSuggestionCacheService creates a new SuggestionCacheService.
func NewSuggestionCacheService(opts SuggestionCacheServiceOptions) *SuggestionCacheService {
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultSuggestionCacheConfig().TTL
	}
	return &SuggestionCacheService{cache: opts.Cache, ttl: ttl}
}

// Get returns cached suggestions for q, or nil when nothing is cached.
func (s *SuggestionCacheService) Get(ctx context.Context, q SuggestionQuery) ([]string, error) {
	raw, err := s.cache.Get(ctx, suggestionKey(q))
	if err != nil || raw == nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Put.
		return nil, nil
	}
	return out, nil
}

// Put stores suggestions for q. Empty lists are not cached.
func (s *SuggestionCacheService) Put(ctx context.Context, q SuggestionQuery, suggestions []string) error {
	if len(suggestions) == 0 {
		return nil
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, suggestionKey(q), raw, s.ttl)
}

// suggestionKey generates a cache key for a suggestion query.
func suggestionKey(q SuggestionQuery) string {
	norm := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Topic)),
		strings.ToLower(strings.TrimSpace(q.Industry)),
		strings.ToLower(strings.TrimSpace(q.Audience)),
	}, "\x1f")
	sum := sha256.Sum256([]byte(norm))
	return "suggestions:" + hex.EncodeToString(sum[:16])
}
