// Package model defines the presentation document schema: documents, slides,
// elements and their typed payloads. The JSON encoding of these types is the
// persisted contract consumed by the storage layer and by export renderers.
package model

import "time"

// ElementType identifies the kind of object an Element carries.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
	ElementLine  ElementType = "line"
	ElementChart ElementType = "chart"
	ElementTable ElementType = "table"
	ElementLatex ElementType = "latex"
	ElementVideo ElementType = "video"
	ElementAudio ElementType = "audio"
	ElementGroup ElementType = "group"
)

// ShapeCategory is the canonical shape classification used by the editor.
// Custom shapes render from an explicit path descriptor instead of a primitive.
type ShapeCategory string

const (
	ShapeRectangle ShapeCategory = "rectangle"
	ShapeCircle    ShapeCategory = "circle"
	ShapeTriangle  ShapeCategory = "triangle"
	ShapeDiamond   ShapeCategory = "diamond"
	ShapeStar      ShapeCategory = "star"
	ShapeCustom    ShapeCategory = "custom"
)

// SourceKind discriminates inline binary payloads from resource references.
type SourceKind string

const (
	SourceInline   SourceKind = "inline"
	SourceResource SourceKind = "resource"
)

// MediaSource is a tagged media value: either inline data (base64 data URI or
// URL) or a reference into the resource store. The discriminator is part of
// the schema so the distinction survives serialization.
type MediaSource struct {
	Kind       SourceKind `json:"kind"`
	Data       string     `json:"data,omitempty"`
	ResourceID string     `json:"resourceId,omitempty"`
}

// Inline builds an inline MediaSource.
func Inline(data string) MediaSource {
	return MediaSource{Kind: SourceInline, Data: data}
}

// ResourceRef builds a resource-referencing MediaSource.
func ResourceRef(id string) MediaSource {
	return MediaSource{Kind: SourceResource, ResourceID: id}
}

// FillKind discriminates the fill tagged union.
type FillKind string

const (
	FillColor    FillKind = "color"
	FillImage    FillKind = "image"
	FillGradient FillKind = "gradient"
)

// Fill describes how a shape or slide background is painted.
type Fill struct {
	Kind     FillKind     `json:"kind"`
	Color    string       `json:"color,omitempty"`
	Image    *MediaSource `json:"image,omitempty"`
	Gradient *Gradient    `json:"gradient,omitempty"`
}

// Gradient is a linear or radial gradient descriptor.
type Gradient struct {
	Kind  string         `json:"kind"` // "linear" or "radial"
	Angle float64        `json:"angle,omitempty"`
	Stops []GradientStop `json:"stops"`
}

// GradientStop is one color stop. Offset is in [0,1].
type GradientStop struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
}

// TextPayload is the content of a text element, or the label of a shape.
// Content may carry markup when produced by the interactive editor; the
// import pipeline flattens external markup to plain text before it gets here.
type TextPayload struct {
	Content    string  `json:"content"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontName   string  `json:"fontName,omitempty"`
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Underline  bool    `json:"underline,omitempty"`
	Align      string  `json:"align,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"`
}

// ShapePayload describes a shape element. Path and ViewBox are only set for
// ShapeCustom. Gradient duplicates a gradient fill's descriptor so consumers
// that can only paint flat colors still get a representative Fill.Color.
type ShapePayload struct {
	Category ShapeCategory `json:"category"`
	Path     string        `json:"path,omitempty"`
	ViewBox  []float64     `json:"viewBox,omitempty"`
	Fill     Fill          `json:"fill"`
	Gradient *Gradient     `json:"gradient,omitempty"`
	Text     *TextPayload  `json:"text,omitempty"`
}

// ImagePayload describes an image element.
type ImagePayload struct {
	Src        MediaSource `json:"src"`
	FixedRatio bool        `json:"fixedRatio,omitempty"`
}

// LinePayload describes a straight connector. Start and End are relative to
// the element origin, in pixels.
type LinePayload struct {
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
	Color string     `json:"color,omitempty"`
	Width float64    `json:"width,omitempty"`
	Style string     `json:"style,omitempty"` // "solid" or "dashed"
}

// ChartPayload describes a chart element.
type ChartPayload struct {
	ChartType string      `json:"chartType"`
	Labels    []string    `json:"labels,omitempty"`
	Legends   []string    `json:"legends,omitempty"`
	Series    [][]float64 `json:"series,omitempty"`
	Colors    []string    `json:"colors,omitempty"`
}

// TableCell is one cell of a table payload.
type TableCell struct {
	Text    string `json:"text"`
	RowSpan int    `json:"rowSpan,omitempty"`
	ColSpan int    `json:"colSpan,omitempty"`
}

// TablePayload describes a table element.
type TablePayload struct {
	Rows      [][]TableCell `json:"rows"`
	ColWidths []float64     `json:"colWidths,omitempty"`
}

// LatexPayload describes a rendered formula element.
type LatexPayload struct {
	Formula string `json:"formula"`
	Color   string `json:"color,omitempty"`
}

// MediaPayload describes a video or audio element.
type MediaPayload struct {
	Src      MediaSource `json:"src"`
	Autoplay bool        `json:"autoplay,omitempty"`
	Loop     bool        `json:"loop,omitempty"`
}

// GroupPayload holds the children of a group element. Children coordinates
// are relative to the group's own origin. Children are never groups
// themselves; the importer flattens nested groups on the way in.
type GroupPayload struct {
	Children []Element `json:"groupedElements"`
}

// Element is one positioned, styled object on a slide. Exactly one payload
// pointer matching Type is non-nil.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Name     string      `json:"name,omitempty"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation,omitempty"`
	Opacity  float64     `json:"opacity"`
	Locked   bool        `json:"locked,omitempty"`
	Hidden   bool        `json:"hidden,omitempty"`
	ZIndex   int         `json:"zIndex"`

	Text  *TextPayload  `json:"text,omitempty"`
	Image *ImagePayload `json:"image,omitempty"`
	Shape *ShapePayload `json:"shape,omitempty"`
	Line  *LinePayload  `json:"line,omitempty"`
	Chart *ChartPayload `json:"chart,omitempty"`
	Table *TablePayload `json:"table,omitempty"`
	Latex *LatexPayload `json:"latex,omitempty"`
	Video *MediaPayload `json:"video,omitempty"`
	Audio *MediaPayload `json:"audio,omitempty"`
	Group *GroupPayload `json:"group,omitempty"`
}

// Transition describes the entry animation of a slide.
type Transition struct {
	Kind     string `json:"kind,omitempty"`
	Duration int    `json:"duration,omitempty"` // milliseconds
}

// Slide owns an ordered sequence of elements. Paint order is ascending
// ZIndex; the stored order is the fallback for equal indexes.
type Slide struct {
	ID         string      `json:"id"`
	Elements   []Element   `json:"elements"`
	Background *Fill       `json:"background,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

// Theme carries the presentation-level style defaults.
type Theme struct {
	Name            string   `json:"name,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	FontColor       string   `json:"fontColor,omitempty"`
	FontName        string   `json:"fontName,omitempty"`
	ThemeColors     []string `json:"themeColors,omitempty"`
}

// Document is the complete in-memory presentation state.
type Document struct {
	Title            string   `json:"title"`
	Slides           []Slide  `json:"slides"`
	ActiveSlideIndex int      `json:"activeSlideIndex"`
	ActiveElementIDs []string `json:"activeElementIds,omitempty"`
	Theme            Theme    `json:"theme"`
}

// Snapshot is an immutable deep copy of the undoable document state.
type Snapshot struct {
	Slides           []Slide   `json:"slides"`
	ActiveSlideIndex int       `json:"activeSlideIndex"`
	Description      string    `json:"description"`
	TakenAt          time.Time `json:"takenAt"`
}

// NewDocument returns an empty document with one blank slide.
func NewDocument(title string) *Document {
	return &Document{
		Title:  title,
		Slides: []Slide{{ID: "slide-1", Elements: []Element{}}},
	}
}
