package pptx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/target/deckgen/internal/domain/model"
	"github.com/target/deckgen/internal/images"
	"github.com/target/deckgen/internal/observability/tracing"
)

// ImageSource returns image bytes for a query, or false when none is available.
type ImageSource interface {
	Resolve(ctx context.Context, query string) ([]byte, bool)
}

// Config controls assembly.
type Config struct {
	Build BuildConfig
	// TempDir holds transient documents; empty uses os.TempDir.
	TempDir string
	// ImageConcurrency bounds parallel image lookups per document.
	ImageConcurrency int
	Creator          string
}

// AssemblerOptions groups dependencies for Assembler.
type AssemblerOptions struct {
	Images ImageSource // Optional: nil renders every slide without images
	Config Config
	Logger *slog.Logger
}

// Assembler renders slide records into a transient .pptx file.
type Assembler struct {
	images ImageSource
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewAssembler constructs an Assembler.
func NewAssembler(opts AssemblerOptions) *Assembler {
	cfg := opts.Config
	if cfg.ImageConcurrency <= 0 {
		cfg.ImageConcurrency = 4
	}
	if cfg.Creator == "" {
		cfg.Creator = "deckgen"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		images: opts.Images,
		cfg:    cfg,
		logger: logger.With("component", "pptx_assembler"),
		now:    time.Now,
	}
}

// Document is an assembled file on local disk. Callers must call Remove once
// the file has been published.
type Document struct {
	Path       string
	SlideCount int
}

// Remove deletes the transient file. Removing twice is not an error.
func (d *Document) Remove() error {
	if d == nil || d.Path == "" {
		return nil
	}
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

// Assemble lays out slides, embeds resolved images and writes the package to a
// temporary file. The file is removed on every error path.
func (a *Assembler) Assemble(ctx context.Context, slides []model.SlideRecord, jobID, topic string) (doc *Document, err error) {
	ctx, span := tracing.Start(ctx, "pptx.assemble",
		attribute.String("job_id", jobID), attribute.Int("records", len(slides)))
	defer func() { tracing.End(span, err) }()

	deck := Build(topic, slides, a.cfg.Build)
	a.attachImages(ctx, deck)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(a.cfg.TempDir, "deck-"+safeName(jobID)+"-*.pptx")
	if err != nil {
		return nil, fmt.Errorf("create temp document: %w", err)
	}
	doc = &Document{Path: f.Name(), SlideCount: len(deck.Slides)}

	werr := Write(f, deck, Meta{Title: topic, Creator: a.cfg.Creator, Created: a.now()})
	cerr := f.Close()
	if werr == nil && cerr != nil {
		werr = fmt.Errorf("close document: %w", cerr)
	}
	if werr != nil {
		_ = doc.Remove()
		return nil, fmt.Errorf("write document: %w", werr)
	}

	span.SetAttributes(attribute.Int("slides", doc.SlideCount))
	a.logger.DebugContext(ctx, "document assembled", "job_id", jobID, "slides", doc.SlideCount, "path", doc.Path)
	return doc, nil
}

// attachImages resolves every distinct picture query in parallel. Slides whose
// query resolved to nothing have their picture dropped.
func (a *Assembler) attachImages(ctx context.Context, deck *Deck) {
	if a.images == nil {
		for i := range deck.Slides {
			deck.Slides[i].Picture = nil
		}
		return
	}

	var (
		mu       sync.Mutex
		resolved = make(map[string][]byte)
		seen     = make(map[string]struct{})
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.ImageConcurrency)
	for _, s := range deck.Slides {
		if s.Picture == nil {
			continue
		}
		q := s.Picture.Query
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		g.Go(func() error {
			data, ok := a.images.Resolve(gctx, q)
			if ok {
				mu.Lock()
				resolved[q] = data
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range deck.Slides {
		p := deck.Slides[i].Picture
		if p == nil {
			continue
		}
		data, ok := resolved[p.Query]
		if !ok {
			deck.Slides[i].Picture = nil
			continue
		}
		p.Data = data
		p.Placed = p.Frame
		if w, h, err := images.Dimensions(data); err == nil {
			fw, fh, ox, oy := images.Fit(w, h, p.Frame.W, p.Frame.H)
			p.Placed = Rect{X: p.Frame.X + ox, Y: p.Frame.Y + oy, W: fw, H: fh}
		}
	}
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
