package pptx

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"text/template"
	"time"
)

//go:embed templates/*
var partsFS embed.FS

var parts = template.Must(template.New("parts").Funcs(template.FuncMap{
	"esc":        escapeXML,
	"hundredths": func(pt int) int { return pt * 100 },
	"bool": func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	},
}).ParseFS(partsFS, "templates/*.tmpl"))

// Static package parts copied verbatim.
var staticParts = []struct{ src, dst string }{
	{"templates/root.rels", "_rels/.rels"},
	{"templates/slideMaster1.xml", "ppt/slideMasters/slideMaster1.xml"},
	{"templates/slideMaster1.xml.rels", "ppt/slideMasters/_rels/slideMaster1.xml.rels"},
	{"templates/slideLayout1.xml", "ppt/slideLayouts/slideLayout1.xml"},
	{"templates/slideLayout1.xml.rels", "ppt/slideLayouts/_rels/slideLayout1.xml.rels"},
	{"templates/theme1.xml", "ppt/theme/theme1.xml"},
	{"templates/presProps.xml", "ppt/presProps.xml"},
	{"templates/viewProps.xml", "ppt/viewProps.xml"},
	{"templates/tableStyles.xml", "ppt/tableStyles.xml"},
}

// Meta is document-level metadata.
type Meta struct {
	Title   string
	Creator string
	Created time.Time
}

type shapeView struct {
	ID         int
	Name       string
	Rect       Rect
	Insets     Insets
	Paragraphs []Paragraph
}

type pictureView struct {
	ID    int
	RelID string
	Media string
	Descr string
	Rect  Rect
}

type slideView struct {
	Number  int
	SlideID int
	RelID   string
	Font    string
	Shapes  []shapeView
	Picture *pictureView
	data    []byte
}

type packageView struct {
	Slides         []slideView
	Width, Height  int64
	PresPropsRel   string
	ViewPropsRel   string
	ThemeRel       string
	TableStylesRel string
	Title          string
	Creator        string
	Created        string
	SlideCount     int
}

func newPackageView(d *Deck, meta Meta) *packageView {
	pv := &packageView{Width: SlideWidth, Height: SlideHeight}
	media := 0
	for i, s := range d.Slides {
		sv := slideView{
			Number:  i + 1,
			SlideID: 256 + i,
			RelID:   "rId" + strconv.Itoa(i+2),
			Font:    FontFamily,
		}
		id := 2
		for _, b := range s.Boxes {
			name := "TextBox " + strconv.Itoa(id)
			if b.Role == RoleTitle {
				name = "Title " + strconv.Itoa(id)
			}
			sv.Shapes = append(sv.Shapes, shapeView{
				ID: id, Name: name, Rect: b.Rect, Insets: b.Insets, Paragraphs: b.Paragraphs,
			})
			id++
		}
		if p := s.Picture; p != nil && len(p.Data) > 0 {
			media++
			placed := p.Placed
			if placed.W == 0 || placed.H == 0 {
				placed = p.Frame
			}
			sv.Picture = &pictureView{
				ID:    id,
				RelID: "rId2",
				Media: "image" + strconv.Itoa(media) + ".jpeg",
				Descr: p.Query,
				Rect:  placed,
			}
			sv.data = p.Data
		}
		pv.Slides = append(pv.Slides, sv)
	}

	next := len(d.Slides) + 2
	rel := func() string { r := "rId" + strconv.Itoa(next); next++; return r }
	pv.PresPropsRel, pv.ViewPropsRel, pv.ThemeRel, pv.TableStylesRel = rel(), rel(), rel(), rel()

	created := meta.Created
	if created.IsZero() {
		created = time.Now()
	}
	pv.Title = meta.Title
	if pv.Title == "" {
		pv.Title = d.Topic
	}
	pv.Creator = meta.Creator
	pv.Created = created.UTC().Format(time.RFC3339)
	pv.SlideCount = len(d.Slides)
	return pv
}

// Write encodes d as a .pptx package.
func Write(w io.Writer, d *Deck, meta Meta) error {
	pv := newPackageView(d, meta)
	zw := zip.NewWriter(w)

	render := func(name, tmpl string, data any) error {
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := parts.ExecuteTemplate(f, tmpl, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return nil
	}

	if err := render("[Content_Types].xml", "content_types.xml.tmpl", pv); err != nil {
		return err
	}
	for _, sp := range staticParts {
		raw, err := partsFS.ReadFile(sp.src)
		if err != nil {
			return fmt.Errorf("read %s: %w", sp.src, err)
		}
		f, err := zw.Create(sp.dst)
		if err != nil {
			return fmt.Errorf("create %s: %w", sp.dst, err)
		}
		if _, err := f.Write(raw); err != nil {
			return fmt.Errorf("write %s: %w", sp.dst, err)
		}
	}
	if err := render("ppt/presentation.xml", "presentation.xml.tmpl", pv); err != nil {
		return err
	}
	if err := render("ppt/_rels/presentation.xml.rels", "presentation.xml.rels.tmpl", pv); err != nil {
		return err
	}
	for _, sv := range pv.Slides {
		n := strconv.Itoa(sv.Number)
		if err := render("ppt/slides/slide"+n+".xml", "slide.xml.tmpl", sv); err != nil {
			return err
		}
		if err := render("ppt/slides/_rels/slide"+n+".xml.rels", "slide.xml.rels.tmpl", sv); err != nil {
			return err
		}
		if sv.Picture != nil {
			f, err := zw.CreateHeader(&zip.FileHeader{Name: "ppt/media/" + sv.Picture.Media, Method: zip.Store})
			if err != nil {
				return fmt.Errorf("create media: %w", err)
			}
			if _, err := f.Write(sv.data); err != nil {
				return fmt.Errorf("write media: %w", err)
			}
		}
	}
	if err := render("docProps/core.xml", "core.xml.tmpl", pv); err != nil {
		return err
	}
	if err := render("docProps/app.xml", "app.xml.tmpl", pv); err != nil {
		return err
	}
	return zw.Close()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
