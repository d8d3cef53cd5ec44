// Package pptx renders slide records into Office Open XML presentations.
package pptx

import "fmt"

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

// FontFamily is used for every run in the document.
const FontFamily = "Calibri"

// Slide dimensions for a 4:3 deck.
var (
	SlideWidth  = Inches(10)
	SlideHeight = Inches(7.5)
)

// Inches converts inches to EMU.
func Inches(v float64) int64 { return int64(v * EMUPerInch) }

// Color is an sRGB color.
type Color struct{ R, G, B uint8 }

// Hex returns the color as RRGGBB.
func (c Color) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

// Palette.
var (
	BrandColor = Color{R: 31, G: 78, B: 121}
	BodyColor  = Color{R: 64, G: 64, B: 64}
)

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
)

// Kind identifies which renderer produced a slide.
type Kind string

const (
	KindTitle     Kind = "title"
	KindAgenda    Kind = "agenda"
	KindSection   Kind = "section"
	KindTwoColumn Kind = "two_column"
	KindContent   Kind = "content"
)

// Rect is a position and size in EMU.
type Rect struct{ X, Y, W, H int64 }

func box(x, y, w, h float64) Rect {
	return Rect{X: Inches(x), Y: Inches(y), W: Inches(w), H: Inches(h)}
}

// Insets are the text box margins in EMU.
type Insets struct{ Left, Top, Right, Bottom int64 }

// Style is the character and paragraph formatting of one paragraph.
type Style struct {
	SizePt int
	Bold   bool
	Color  Color
	Align  Align
}

// Paragraph is one line of text with a single run.
type Paragraph struct {
	Text  string
	Style Style
}

// Role distinguishes title boxes from body boxes.
type Role string

const (
	RoleTitle Role = "title"
	RoleBody  Role = "body"
)

// TextBox is a positioned text frame.
type TextBox struct {
	Role       Role
	Rect       Rect
	Insets     Insets
	Paragraphs []Paragraph
}

// Picture is an image frame. Data is empty until the image is resolved.
type Picture struct {
	Frame  Rect
	Query  string
	Data   []byte
	Placed Rect
}

// Slide is one rendered slide.
type Slide struct {
	Kind      Kind
	Title     string
	Synthetic bool
	Boxes     []TextBox
	Picture   *Picture
}

// Deck is a fully laid out presentation.
type Deck struct {
	Topic  string
	Slides []Slide
}

// Count returns the number of slides of kind k.
func (d *Deck) Count(k Kind) int {
	n := 0
	for _, s := range d.Slides {
		if s.Kind == k {
			n++
		}
	}
	return n
}
