package content

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/target/deckgen/internal/domain/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// twoColumnThreshold is the bullet count above which a fallback slide switches to two columns.
const twoColumnThreshold = 5

// agendaMinSlides is the smallest deck that gets an agenda slide.
const agendaMinSlides = 5

type catalogSlide struct {
	Title       string   `yaml:"title"`
	ImageQuery  string   `yaml:"image_query"`
	Description string   `yaml:"description"`
	Items       []string `yaml:"items"`
	Bullets     []string `yaml:"bullets"`
}

// Catalog is the fixed content used by the deterministic fallback generator.
type Catalog struct {
	Title          catalogSlide   `yaml:"title"`
	Agenda         catalogSlide   `yaml:"agenda"`
	DefaultBullets []string       `yaml:"default_bullets"`
	Sections       []catalogSlide `yaml:"sections"`
	Closing        catalogSlide   `yaml:"closing"`
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// LoadCatalog parses a fallback catalog document.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse fallback catalog: %w", err)
	}
	if c.Title.Title == "" || c.Closing.Title == "" || len(c.Sections) == 0 {
		return nil, fmt.Errorf("parse fallback catalog: title, closing and sections are required")
	}
	return &c, nil
}

func mustLoadCatalog(raw []byte) *Catalog {
	c, err := LoadCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the embedded fallback catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Capacity is the largest deck the catalog can fill for slideCount.
func (c *Catalog) Capacity(slideCount int) int {
	return len(c.Fallback("", slideCount))
}

// Fallback builds slides for topic from the default catalog.
func Fallback(topic string, slideCount int) []model.SlideRecord {
	return defaultCatalog.Fallback(topic, slideCount)
}

// Fallback builds a deterministic deck: a title slide, an agenda when the deck is
// long enough, catalog sections, and a closing takeaways slide, truncated to slideCount.
func (c *Catalog) Fallback(topic string, slideCount int) []model.SlideRecord {
	if slideCount <= 0 {
		return nil
	}
	fill := strings.NewReplacer("{topic}", topic, "{topic_lower}", strings.ToLower(topic))
	expand := func(items []string) []string {
		out := make([]string, len(items))
		for i, s := range items {
			out[i] = fill.Replace(s)
		}
		return out
	}

	slides := make([]model.SlideRecord, 0, slideCount)
	slides = append(slides, model.SlideRecord{
		Title:      fill.Replace(c.Title.Title),
		Content:    []string{},
		SlideType:  model.SlideTypeTitle,
		Layout:     model.LayoutContent,
		ImageQuery: fill.Replace(c.Title.ImageQuery),
	})

	withAgenda := slideCount > agendaMinSlides
	if withAgenda {
		slides = append(slides, model.SlideRecord{
			Title:      fill.Replace(c.Agenda.Title),
			Content:    expand(c.Agenda.Items),
			SlideType:  model.SlideTypeAgenda,
			Layout:     model.LayoutAgenda,
			ImageQuery: fill.Replace(c.Agenda.ImageQuery),
		})
	}

	body := slideCount - 2
	if withAgenda {
		body = slideCount - 3
	}
	for i := 0; i < body && i < len(c.Sections); i++ {
		sec := c.Sections[i]
		bullets := sec.Bullets
		if len(bullets) == 0 {
			bullets = c.DefaultBullets
		}
		layout := model.LayoutContent
		if len(bullets) > twoColumnThreshold {
			layout = model.LayoutTwoColumn
		}
		slides = append(slides, model.SlideRecord{
			Title:      fill.Replace(sec.Title) + ": " + topic,
			Content:    expand(bullets),
			SlideType:  model.SlideTypeContent,
			Layout:     layout,
			ImageQuery: fill.Replace(sec.ImageQuery),
		})
	}

	slides = append(slides, model.SlideRecord{
		Title:      fill.Replace(c.Closing.Title),
		Content:    expand(c.Closing.Items),
		SlideType:  model.SlideTypeContent,
		Layout:     model.LayoutContent,
		ImageQuery: fill.Replace(c.Closing.ImageQuery),
	})

	if len(slides) > slideCount {
		slides = slides[:slideCount]
	}
	return slides
}
