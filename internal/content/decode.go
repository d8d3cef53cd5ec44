package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/target/deckgen/internal/domain/model"
)

// ErrDecode is returned when a model response cannot be turned into slides.
var ErrDecode = errors.New("decode slide response")

const (
	defaultSlideTitle   = "Untitled Slide"
	defaultSlideContent = "Content not available"
)

type rawDeck struct {
	PresentationTitle string     `json:"presentation_title"`
	Subtitle          string     `json:"subtitle"`
	Slides            []rawSlide `json:"slides"`
}

type rawSlide struct {
	Title      string    `json:"title"`
	Content    *[]string `json:"content"`
	SlideType  string    `json:"slide_type"`
	Layout     string    `json:"layout"`
	ImageQuery string    `json:"image_query"`
}

// Decode parses a model response into at most slideCount slides. Markdown code
// fences and prose around the JSON object are ignored. Missing or unknown
// fields are replaced with defaults.
func Decode(text, topic string, slideCount int) ([]model.SlideRecord, error) {
	body := extractObject(text)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrDecode)
	}

	var deck rawDeck
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&deck); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("%w: response has no slides", ErrDecode)
	}

	out := make([]model.SlideRecord, 0, min(len(deck.Slides), slideCount))
	for _, rs := range deck.Slides {
		if len(out) == slideCount {
			break
		}
		out = append(out, normalize(rs, topic))
	}
	return out, nil
}

func normalize(rs rawSlide, topic string) model.SlideRecord {
	s := model.SlideRecord{
		Title:      strings.TrimSpace(rs.Title),
		SlideType:  model.SlideType(strings.ToLower(strings.TrimSpace(rs.SlideType))),
		Layout:     model.Layout(strings.ToLower(strings.TrimSpace(rs.Layout))),
		ImageQuery: strings.TrimSpace(rs.ImageQuery),
	}
	if s.Title == "" {
		s.Title = defaultSlideTitle
	}
	if rs.Content == nil {
		s.Content = []string{defaultSlideContent}
	} else {
		s.Content = make([]string, 0, len(*rs.Content))
		for _, line := range *rs.Content {
			if line = strings.TrimSpace(line); line != "" {
				s.Content = append(s.Content, line)
			}
		}
	}
	if !s.SlideType.Valid() {
		s.SlideType = model.SlideTypeContent
	}
	if !s.Layout.Valid() {
		s.Layout = model.LayoutContent
	}
	if s.ImageQuery == "" {
		s.ImageQuery = topic + " professional"
	}
	return s
}

// extractObject strips code fences and returns the outermost {...} span.
func extractObject(text string) string {
	t := strings.TrimSpace(text)
	if i := strings.Index(t, "```json"); i >= 0 {
		t = t[i+len("```json"):]
	} else if i := strings.Index(t, "```"); i >= 0 {
		t = t[i+3:]
	}
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return ""
	}
	return t[start : end+1]
}
