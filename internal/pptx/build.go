package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/target/deckgen/internal/domain/model"
)

const (
	titleSubtitle  = "Professional Presentation"
	thankYouTitle  = "Thank You"
	thankYouImage  = "thank you business meeting"
	untitledSlide  = "Untitled Slide"
	bulletPrefix   = "• "
	defaultSection = "Section"
)

var thankYouLines = []string{"Questions & Discussion", "Contact for more information"}

// BuildConfig holds the automatic section divider thresholds.
type BuildConfig struct {
	// SectionInterval inserts a divider after every Nth slide index.
	SectionInterval int
	// MaxSections stops automatic dividers once this many section slides exist.
	MaxSections int
	// SectionMinSlides disables automatic dividers for decks with this many records or fewer.
	SectionMinSlides int
}

// DefaultBuildConfig returns the standard thresholds.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{SectionInterval: 5, MaxSections: 2, SectionMinSlides: 10}
}

func (c BuildConfig) withDefaults() BuildConfig {
	def := DefaultBuildConfig()
	if c.SectionInterval <= 0 {
		c.SectionInterval = def.SectionInterval
	}
	if c.MaxSections <= 0 {
		c.MaxSections = def.MaxSections
	}
	if c.SectionMinSlides <= 0 {
		c.SectionMinSlides = def.SectionMinSlides
	}
	return c
}

// Margins per layout. Every text box on a slide of a given kind uses the same insets.
var layoutInsets = map[Kind]Insets{
	KindTitle:     {Left: Inches(0.1), Top: Inches(0.05), Right: Inches(0.1), Bottom: Inches(0.05)},
	KindAgenda:    {Left: Inches(0.1), Top: Inches(0.05), Right: Inches(0.1), Bottom: Inches(0.05)},
	KindSection:   {Left: Inches(0.1), Top: Inches(0.05), Right: Inches(0.1), Bottom: Inches(0.05)},
	KindTwoColumn: {Left: Inches(0.1), Top: Inches(0.1), Right: Inches(0.1), Bottom: Inches(0.1)},
	KindContent:   {Left: Inches(0.1), Top: Inches(0.1), Right: Inches(0.1), Bottom: Inches(0.1)},
}

func titleStyle(size int, align Align) Style {
	return Style{SizePt: size, Bold: true, Color: BrandColor, Align: align}
}

func bodyStyle(size int, align Align) Style {
	return Style{SizePt: size, Color: BodyColor, Align: align}
}

// Build lays out records as a deck. A title slide is synthesized when the first
// record is not one, and a closing Thank You slide is always appended.
func Build(topic string, records []model.SlideRecord, cfg BuildConfig) *Deck {
	cfg = cfg.withDefaults()
	d := &Deck{Topic: topic, Slides: make([]Slide, 0, len(records)+4)}

	if len(records) == 0 || records[0].SlideType != model.SlideTypeTitle {
		title := strings.TrimSpace(topic)
		if title == "" {
			title = untitledSlide
		}
		s := titleSlide(title)
		s.Synthetic = true
		d.Slides = append(d.Slides, s)
	}

	sections := 0
	for i, r := range records {
		title := strings.TrimSpace(r.Title)
		switch {
		case r.SlideType == model.SlideTypeTitle:
			d.Slides = append(d.Slides, titleSlide(orDefault(title, topic)))
		case r.SlideType == model.SlideTypeAgenda:
			d.Slides = append(d.Slides, agendaSlide(orDefault(title, "Agenda"), r.Content))
		case r.SlideType == model.SlideTypeSection:
			sections++
			d.Slides = append(d.Slides, sectionSlide(orDefault(title, defaultSection+" "+strconv.Itoa(sections))))
		case r.Layout == model.LayoutTwoColumn:
			d.Slides = append(d.Slides, twoColumnSlide(orDefault(title, untitledSlide), r.Content))
		default:
			d.Slides = append(d.Slides, contentSlide(orDefault(title, untitledSlide), r.Content, r.Query()))
			if i > 0 && i%cfg.SectionInterval == 0 && sections < cfg.MaxSections && len(records) > cfg.SectionMinSlides {
				s := sectionSlide(fmt.Sprintf("%s %d", defaultSection, sections+1))
				s.Synthetic = true
				d.Slides = append(d.Slides, s)
				sections++
			}
		}
	}

	closing := contentSlide(thankYouTitle, thankYouLines, thankYouImage)
	closing.Synthetic = true
	d.Slides = append(d.Slides, closing)
	return d
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func titleSlide(title string) Slide {
	in := layoutInsets[KindTitle]
	return Slide{
		Kind:  KindTitle,
		Title: title,
		Boxes: []TextBox{
			{Role: RoleTitle, Rect: box(0.5, 2.5, 9, 1.5), Insets: in,
				Paragraphs: []Paragraph{{Text: title, Style: titleStyle(54, AlignCenter)}}},
			{Role: RoleBody, Rect: box(0.5, 4.2, 9, 1), Insets: in,
				Paragraphs: []Paragraph{{Text: titleSubtitle, Style: bodyStyle(24, AlignCenter)}}},
		},
	}
}

func agendaSlide(title string, items []string) Slide {
	in := layoutInsets[KindAgenda]
	paras := make([]Paragraph, 0, len(items))
	for i, item := range items {
		paras = append(paras, Paragraph{Text: fmt.Sprintf("%d. %s", i+1, item), Style: bodyStyle(20, AlignLeft)})
	}
	return Slide{
		Kind:  KindAgenda,
		Title: title,
		Boxes: []TextBox{
			{Role: RoleTitle, Rect: box(0.5, 0.5, 9, 1), Insets: in,
				Paragraphs: []Paragraph{{Text: title, Style: titleStyle(36, AlignLeft)}}},
			{Role: RoleBody, Rect: box(1.5, 2, 7, 4.5), Insets: in, Paragraphs: paras},
		},
	}
}

func sectionSlide(title string) Slide {
	return Slide{
		Kind:  KindSection,
		Title: title,
		Boxes: []TextBox{
			{Role: RoleTitle, Rect: box(1, 3, 8, 2), Insets: layoutInsets[KindSection],
				Paragraphs: []Paragraph{{Text: title, Style: titleStyle(48, AlignCenter)}}},
		},
	}
}

func twoColumnSlide(title string, content []string) Slide {
	in := layoutInsets[KindTwoColumn]
	mid := len(content) / 2
	return Slide{
		Kind:  KindTwoColumn,
		Title: title,
		Boxes: []TextBox{
			{Role: RoleTitle, Rect: box(0.5, 0.8, 9, 1), Insets: in,
				Paragraphs: []Paragraph{{Text: title, Style: titleStyle(32, AlignLeft)}}},
			{Role: RoleBody, Rect: box(0.5, 2, 4.5, 4.5), Insets: in, Paragraphs: bullets(content[:mid], 16)},
			{Role: RoleBody, Rect: box(5, 2, 4.5, 4.5), Insets: in, Paragraphs: bullets(content[mid:], 16)},
		},
	}
}

func contentSlide(title string, content []string, query string) Slide {
	in := layoutInsets[KindContent]
	return Slide{
		Kind:  KindContent,
		Title: title,
		Boxes: []TextBox{
			{Role: RoleTitle, Rect: box(0.5, 0.5, 9, 1), Insets: in,
				Paragraphs: []Paragraph{{Text: title, Style: titleStyle(32, AlignLeft)}}},
			{Role: RoleBody, Rect: box(0.5, 2, 4.5, 4.5), Insets: in, Paragraphs: bullets(content, 18)},
		},
		Picture: &Picture{Frame: box(5.5, 1.5, 4, 3), Query: query},
	}
}

func bullets(lines []string, size int) []Paragraph {
	out := make([]Paragraph, 0, len(lines))
	for _, l := range lines {
		out = append(out, Paragraph{Text: bulletPrefix + l, Style: bodyStyle(size, AlignLeft)})
	}
	return out
}
