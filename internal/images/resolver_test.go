package images_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/images"
	"github.com/target/deckgen/internal/mocks"
)

func provider(ctrl *gomock.Controller, name string) *mocks.MockImageProvider {
	p := mocks.NewMockImageProvider(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()
	return p
}

func TestResolver_ShortCircuitsOnFirstSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, b, c := provider(ctrl, "a"), provider(ctrl, "b"), provider(ctrl, "c")
	img := jpegBytes(t, 40, 30)
	a.EXPECT().Fetch(gomock.Any(), "city skyline").Return(img, nil)
	// b and c carry no Fetch expectation; any call fails the test.

	r := images.NewResolver(images.ResolverOptions{Providers: []core.ImageProvider{a, b, c}})
	got, ok := r.Resolve(context.Background(), "city skyline")
	assert.True(t, ok)
	assert.Equal(t, img, got)
}

func TestResolver_FallsThroughInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, b, c := provider(ctrl, "a"), provider(ctrl, "b"), provider(ctrl, "c")
	img := jpegBytes(t, 20, 20)
	gomock.InOrder(
		a.EXPECT().Fetch(gomock.Any(), "q").Return(nil, errors.New("timeout")),
		b.EXPECT().Fetch(gomock.Any(), "q").Return(nil, images.ErrNoMatch),
		c.EXPECT().Fetch(gomock.Any(), "q").Return(img, nil),
	)

	r := images.NewResolver(images.ResolverOptions{Providers: []core.ImageProvider{a, b, c}})
	got, ok := r.Resolve(context.Background(), "q")
	assert.True(t, ok)
	assert.Equal(t, img, got)
}

func TestResolver_AllFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, b, c := provider(ctrl, "a"), provider(ctrl, "b"), provider(ctrl, "c")
	a.EXPECT().Fetch(gomock.Any(), "q").Return(nil, errors.New("status 500"))
	b.EXPECT().Fetch(gomock.Any(), "q").Return([]byte("<html>not an image</html>"), nil)
	c.EXPECT().Fetch(gomock.Any(), "q").Return(nil, context.DeadlineExceeded)

	r := images.NewResolver(images.ResolverOptions{Providers: []core.ImageProvider{a, b, c}})
	got, ok := r.Resolve(context.Background(), "q")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResolver_EmptyQueryAndNoProviders(t *testing.T) {
	r := images.NewResolver(images.ResolverOptions{})
	_, ok := r.Resolve(context.Background(), "anything")
	assert.False(t, ok)

	ctrl := gomock.NewController(t)
	a := provider(ctrl, "a")
	r = images.NewResolver(images.ResolverOptions{Providers: []core.ImageProvider{a}})
	_, ok = r.Resolve(context.Background(), "   ")
	assert.False(t, ok)
}

func TestResolver_OversizedImageFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, b := provider(ctrl, "a"), provider(ctrl, "b")
	img := jpegBytes(t, 20, 20)
	gomock.InOrder(
		a.EXPECT().Fetch(gomock.Any(), "q").Return(pngHeader(12_000, 8_000), nil),
		b.EXPECT().Fetch(gomock.Any(), "q").Return(img, nil),
	)

	r := images.NewResolver(images.ResolverOptions{Providers: []core.ImageProvider{a, b}})
	got, ok := r.Resolve(context.Background(), "q")
	assert.True(t, ok)
	assert.Equal(t, img, got)
}
