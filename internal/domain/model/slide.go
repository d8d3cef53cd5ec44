package model

// SlideType selects the renderer used for a slide.
type SlideType string

// Layout governs the visual arrangement of a slide independent of its type.
type Layout string

const (
	SlideTypeTitle   SlideType = "title"
	SlideTypeAgenda  SlideType = "agenda"
	SlideTypeSection SlideType = "section"
	SlideTypeContent SlideType = "content"

	LayoutContent   Layout = "content"
	LayoutTwoColumn Layout = "two_column"
	LayoutAgenda    Layout = "agenda"
)

// Valid returns true if the SlideType is known.
func (t SlideType) Valid() bool {
	switch t {
	case SlideTypeTitle, SlideTypeAgenda, SlideTypeSection, SlideTypeContent:
		return true
	}
	return false
}

// Valid returns true if the Layout is known.
func (l Layout) Valid() bool {
	switch l {
	case LayoutContent, LayoutTwoColumn, LayoutAgenda:
		return true
	}
	return false
}

// SlideRecord describes one slide's content before rendering.
type SlideRecord struct {
	Title      string    `json:"title"       yaml:"title"`
	Content    []string  `json:"content"     yaml:"content"`
	SlideType  SlideType `json:"slide_type"  yaml:"slide_type"`
	Layout     Layout    `json:"layout"      yaml:"layout"`
	ImageQuery string    `json:"image_query" yaml:"image_query"`
}

// Query returns the image query for the slide, falling back to its title.
func (s SlideRecord) Query() string {
	if s.ImageQuery != "" {
		return s.ImageQuery
	}
	return s.Title
}
