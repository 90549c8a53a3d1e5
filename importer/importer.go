// Package importer normalizes a parsed external presentation tree into the
// internal document schema: unit conversion, shape classification, rich-text
// flattening, nested-group flattening and z-index reconstruction.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/slidekit/slidekit/idgen"
	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/norm"
	"github.com/slidekit/slidekit/raw"
)

// ErrNoSlides is returned when the raw tree has no usable slides. The caller
// falls back to a fresh empty document; partial imports are never committed.
var ErrNoSlides = errors.New("importer: presentation contains no slides")

// Default editor canvas the imported geometry is rescaled onto.
const (
	DefaultCanvasWidth  = 1000.0
	DefaultCanvasHeight = 562.5
)

// Config configures an Importer.
type Config struct {
	// CanvasWidth/CanvasHeight is the editor viewport in pixels
	// (default: 1000×562.5, a 16:9 canvas).
	CanvasWidth  float64 `json:"canvas_width" yaml:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height" yaml:"canvas_height"`

	// SlideIDs and ElementIDs override the id generators.
	SlideIDs   idgen.Generator `json:"-" yaml:"-"`
	ElementIDs idgen.Generator `json:"-" yaml:"-"`

	// Logger for conversion warnings.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.CanvasWidth <= 0 {
		c.CanvasWidth = DefaultCanvasWidth
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = DefaultCanvasHeight
	}
	if c.SlideIDs == nil {
		c.SlideIDs = idgen.Slide
	}
	if c.ElementIDs == nil {
		c.ElementIDs = idgen.Element
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Importer converts raw presentation trees into documents.
type Importer struct {
	cfg Config
}

// New creates an Importer with the given configuration.
func New(cfg Config) *Importer {
	cfg.defaults()
	return &Importer{cfg: cfg}
}

// ImportDocument converts the whole raw tree. One global scale pair maps the
// declared page size onto the canvas and applies uniformly to every slide; a
// presentation cannot mix scales.
func (imp *Importer) ImportDocument(rd *raw.Document) (*model.Document, error) {
	if rd == nil || len(rd.Slides) == 0 {
		return nil, ErrNoSlides
	}

	scaleX, scaleY := norm.ScaleFactors(rd.Size.Width, rd.Size.Height, imp.cfg.CanvasWidth, imp.cfg.CanvasHeight)
	cc := convCtx{scaleX: scaleX, scaleY: scaleY}

	doc := &model.Document{Title: rd.Title, Slides: make([]model.Slide, 0, len(rd.Slides))}
	for i := range rd.Slides {
		cc.slideIndex = i
		doc.Slides = append(doc.Slides, imp.importSlide(&rd.Slides[i], cc))
	}

	imp.cfg.Logger.Info("presentation imported",
		"slides", len(doc.Slides),
		"scale_x", fmt.Sprintf("%.3f", scaleX),
		"scale_y", fmt.Sprintf("%.3f", scaleY))
	return doc, nil
}

// importSlide merges layout elements ahead of content elements, converts the
// candidates, and reconstructs paint order.
func (imp *Importer) importSlide(rs *raw.Slide, cc convCtx) model.Slide {
	slide := model.Slide{
		ID:    imp.cfg.SlideIDs(),
		Notes: rs.Note,
	}

	candidates := make([]raw.Node, 0, len(rs.LayoutElements)+len(rs.Elements))
	candidates = append(candidates, rs.LayoutElements...)
	candidates = append(candidates, rs.Elements...)

	type ordered struct {
		el    model.Element
		order int
	}
	converted := make([]ordered, 0, len(candidates))
	for i := range candidates {
		n := &candidates[i]
		el, ok := imp.convertNode(n, cc)
		if !ok {
			continue
		}
		converted = append(converted, ordered{el: el, order: n.OrderOf(i)})
	}

	// Paint order: type-priority band first, then the source's explicit
	// order field as a tie-breaker inside a band, then encounter order.
	// Bands deliberately override explicit source ordering; external
	// sources do not encode paint order reliably.
	sort.SliceStable(converted, func(i, j int) bool {
		bi, bj := band(converted[i].el.Type), band(converted[j].el.Type)
		if bi != bj {
			return bi < bj
		}
		return converted[i].order < converted[j].order
	})

	slide.Elements = make([]model.Element, len(converted))
	for i := range converted {
		converted[i].el.ZIndex = i
		slide.Elements[i] = converted[i].el
	}

	if rs.Fill != nil {
		fill, _ := resolveFill(rs.Fill)
		slide.Background = &fill
	}
	return slide
}

// band assigns the type-priority paint band: backgrounds and media paint
// under shapes, text always paints on top.
func band(t model.ElementType) int {
	switch t {
	case model.ElementImage, model.ElementVideo, model.ElementAudio:
		return 0
	case model.ElementShape:
		return 1
	case model.ElementLine:
		return 2
	case model.ElementChart, model.ElementTable, model.ElementGroup, model.ElementLatex:
		return 3
	case model.ElementText:
		return 4
	default:
		return 4
	}
}
