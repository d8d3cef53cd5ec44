package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/target/deckgen/internal/core"
)

// MaxSuggestions is the number of topic suggestions returned per request.
const MaxSuggestions = 5

// ErrSuggestionsUnavailable is returned when no text generator is configured.
var ErrSuggestionsUnavailable = errors.New("topic suggestions unavailable")

const suggestSystemPrompt = "You are a professional presentation topic generator. " +
	"Generate clear, specific, and engaging presentation topics."

var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// SuggestConfig controls suggestion prompts.
type SuggestConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultSuggestConfig returns the standard suggestion settings.
func DefaultSuggestConfig() SuggestConfig {
	return SuggestConfig{Model: "gpt-3.5-turbo", MaxTokens: 500, Temperature: 0.7}
}

// Suggest asks llm for presentation topics related to topic.
func Suggest(ctx context.Context, llm core.TextGenerator, cfg SuggestConfig, topic, industry, audience string) ([]string, error) {
	if llm == nil {
		return nil, ErrSuggestionsUnavailable
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d professional presentation topics based on: '%s'\n\n", MaxSuggestions, topic)
	b.WriteString("Requirements:\n")
	b.WriteString("- Each topic should be specific and engaging\n")
	b.WriteString("- Topics should be relevant to the main theme\n")
	b.WriteString("- Format each topic as a single line\n")
	b.WriteString("- Make topics suitable for a business presentation\n")
	if industry != "" {
		fmt.Fprintf(&b, "\nIndustry Context: %s", industry)
	}
	if audience != "" {
		fmt.Fprintf(&b, "\nTarget Audience: %s", audience)
	}

	text, err := llm.Complete(ctx, core.CompletionRequest{
		System:      suggestSystemPrompt,
		Prompt:      b.String(),
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest topics: %w", err)
	}
	return ParseSuggestions(text), nil
}

// ParseSuggestions splits a response into at most MaxSuggestions topics with
// list numbering and bullets removed.
func ParseSuggestions(text string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
