package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/deckgen/internal/core"
)

var (
	_ core.Publisher = (*LocalPublisher)(nil)
	_ core.Publisher = (*GCSPublisher)(nil)
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "abc.pptx", ObjectKey("", "abc"))
	assert.Equal(t, "presentations/abc.pptx", ObjectKey("/presentations/", "abc"))
}

func TestLocalPublisher_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pub, err := NewLocalPublisher(filepath.Join(t.TempDir(), "store"), "http://files.local/decks/")
	require.NoError(t, err)

	url, err := pub.Publish(ctx, writeDoc(t, "pptx-bytes"), "presentations/job-1.pptx")
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/decks/presentations/job-1.pptx", url)

	rc, err := pub.Open(ctx, "presentations/job-1.pptx")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pptx-bytes", string(body))

	require.NoError(t, pub.Delete(ctx, "presentations/job-1.pptx"))
	require.NoError(t, pub.Delete(ctx, "presentations/job-1.pptx"))

	_, err = pub.Open(ctx, "presentations/job-1.pptx")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalPublisher_RejectsTraversal(t *testing.T) {
	pub, err := NewLocalPublisher(t.TempDir(), "")
	require.NoError(t, err)

	_, err = pub.Publish(context.Background(), writeDoc(t, "x"), "../escape.pptx")
	require.Error(t, err)
	require.Error(t, pub.Delete(context.Background(), ""))
}

func TestLocalPublisher_MissingSource(t *testing.T) {
	pub, err := NewLocalPublisher(t.TempDir(), "")
	require.NoError(t, err)
	_, err = pub.Publish(context.Background(), filepath.Join(t.TempDir(), "gone.pptx"), "k.pptx")
	require.Error(t, err)
}

func TestGCSConfig_ClientOptions(t *testing.T) {
	assert.Len(t, GCSConfig{}.ClientOptions(), 1)
	assert.Len(t, GCSConfig{CredentialsJSON: `{"type":"service_account"}`}.ClientOptions(), 2)
	assert.Len(t, GCSConfig{CredentialsFile: "/etc/creds.json"}.ClientOptions(), 2)
}

func TestNewGCSPublisher_RequiresBucket(t *testing.T) {
	_, err := NewGCSPublisher(context.Background(), GCSConfig{}, nil)
	require.Error(t, err)
}
