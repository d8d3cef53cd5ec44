package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/deckgen/internal/domain/model"
)

func TestDecode_FencedResponse(t *testing.T) {
	text := "Here is your deck:\n```json\n" + `{
  "presentation_title": "Cloud",
  "subtitle": "Overview",
  "slides": [
    {"title": "Cloud", "content": [], "slide_type": "title", "layout": "content", "image_query": "cloud servers"},
    {"title": "Why Move", "content": ["Cost", " ", "Scale"], "slide_type": "content", "layout": "two_column"}
  ]
}` + "\n```\nEnjoy!"

	slides, err := Decode(text, "Cloud", 10)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, model.SlideTypeTitle, slides[0].SlideType)
	assert.Empty(t, slides[0].Content)
	assert.Equal(t, []string{"Cost", "Scale"}, slides[1].Content)
	assert.Equal(t, model.LayoutTwoColumn, slides[1].Layout)
	assert.Equal(t, "Cloud professional", slides[1].ImageQuery)
}

func TestDecode_Defaults(t *testing.T) {
	slides, err := Decode(`{"slides":[{"slide_type":"diagram","layout":"grid"}]}`, "Fintech", 5)
	require.NoError(t, err)
	require.Len(t, slides, 1)

	s := slides[0]
	assert.Equal(t, "Untitled Slide", s.Title)
	assert.Equal(t, []string{"Content not available"}, s.Content)
	assert.Equal(t, model.SlideTypeContent, s.SlideType)
	assert.Equal(t, model.LayoutContent, s.Layout)
	assert.Equal(t, "Fintech professional", s.ImageQuery)
}

func TestDecode_TruncatesToCount(t *testing.T) {
	slides, err := Decode(`{"slides":[{"title":"a"},{"title":"b"},{"title":"c"}]}`, "t", 2)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "b", slides[1].Title)
}

func TestDecode_Failures(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"prose only":   "I cannot help with that.",
		"no slides":    `{"presentation_title":"x","slides":[]}`,
		"wrong shape":  `{"slides":"not a list"}`,
		"broken json":  `{"slides":[{"title":"a"`,
		"content type": `{"slides":[{"title":"a","content":"one string"}]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(text, "t", 5)
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}
