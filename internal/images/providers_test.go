package images_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/deckgen/internal/images"
)

func TestPexels_Fetch(t *testing.T) {
	img := jpegBytes(t, 10, 10)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "pexels-key", r.Header.Get("Authorization"))
			assert.Equal(t, "team meeting", r.URL.Query().Get("query"))
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			fmt.Fprintf(w, `{"photos":[{"src":{"medium":"%s/img.jpg"}}]}`, srv.URL)
		case "/img.jpg":
			_, _ = w.Write(img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := images.NewPexels(images.ProviderConfig{APIKey: "pexels-key", BaseURL: srv.URL})
	assert.Equal(t, "pexels", p.Name())
	got, err := p.Fetch(context.Background(), "team meeting")
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestPexels_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"photos":[]}`))
	}))
	defer srv.Close()

	p := images.NewPexels(images.ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Fetch(context.Background(), "nothing")
	require.ErrorIs(t, err, images.ErrNoMatch)
}

func TestPexels_MissingKey(t *testing.T) {
	_, err := images.NewPexels(images.ProviderConfig{}).Fetch(context.Background(), "q")
	require.Error(t, err)
}

func TestPixabay_Fetch(t *testing.T) {
	img := jpegBytes(t, 12, 8)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hit.jpg" {
			_, _ = w.Write(img)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "pixabay-key", q.Get("key"))
		assert.Equal(t, "photo", q.Get("image_type"))
		assert.Equal(t, "3", q.Get("per_page"))
		fmt.Fprintf(w, `{"hits":[{"webformatURL":"%s/hit.jpg"}]}`, srv.URL)
	}))
	defer srv.Close()

	p := images.NewPixabay(images.ProviderConfig{APIKey: "pixabay-key", BaseURL: srv.URL})
	got, err := p.Fetch(context.Background(), "growth chart")
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestPixabay_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := images.NewPixabay(images.ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Fetch(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestUnsplash_Fetch(t *testing.T) {
	img := jpegBytes(t, 8, 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/800x600/", r.URL.Path)
		assert.Equal(t, "office+desk", r.URL.RawQuery)
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	p := images.NewUnsplash(images.ProviderConfig{BaseURL: srv.URL})
	got, err := p.Fetch(context.Background(), "office desk")
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := images.NewUnsplash(images.ProviderConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := p.Fetch(context.Background(), "slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
