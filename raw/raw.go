// Package raw models the import boundary: the loosely-typed presentation
// tree produced by an external file-format parser. Every field is optional;
// accessors return typed fallbacks so converters never chase nil pointers.
package raw

import "encoding/json"

// Document is the root of a parsed presentation tree. Geometry throughout
// the tree is expressed in points; Size is the declared page size.
type Document struct {
	Slides []Slide `json:"slides"`
	Size   Size    `json:"size"`
	Title  string  `json:"title,omitempty"`
}

// Size is the external page size in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Slide carries user content elements, template-provided layout elements,
// a background fill and speaker notes.
type Slide struct {
	Elements       []Node `json:"elements"`
	LayoutElements []Node `json:"layoutElements,omitempty"`
	Fill           *Fill  `json:"fill,omitempty"`
	Note           string `json:"note,omitempty"`
}

// NodeKind classifies a raw node into one of the recognized shapes of the
// boundary, with an explicit unknown variant for everything else.
type NodeKind string

const (
	KindText    NodeKind = "text"
	KindShape   NodeKind = "shape"
	KindImage   NodeKind = "image"
	KindLine    NodeKind = "line"
	KindChart   NodeKind = "chart"
	KindTable   NodeKind = "table"
	KindVideo   NodeKind = "video"
	KindAudio   NodeKind = "audio"
	KindMath    NodeKind = "math"
	KindGroup   NodeKind = "group"
	KindUnknown NodeKind = "unknown"
)

// Node is one raw element. Which fields are populated depends on the type
// token; absent numeric fields decode as nil.
type Node struct {
	Type     string `json:"type,omitempty"`
	ShapType string `json:"shapType,omitempty"`
	Name     string `json:"name,omitempty"`

	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Rotate  *float64 `json:"rotate,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Alpha   *float64 `json:"alpha,omitempty"` // 0-100, inverse of opacity
	Order   *int     `json:"order,omitempty"`
	ZIndex  *int     `json:"zIndex,omitempty"`

	IsLayout bool `json:"isLayout,omitempty"`

	// Text.
	Content  string   `json:"content,omitempty"` // markup
	FontSize *float64 `json:"fontSize,omitempty"`
	FontName string   `json:"fontName,omitempty"`
	Color    string   `json:"color,omitempty"`
	Align    string   `json:"align,omitempty"`

	// Shape.
	Fill    *Fill     `json:"fill,omitempty"`
	Path    string    `json:"path,omitempty"`
	ViewBox []float64 `json:"viewBox,omitempty"`

	// Media.
	Src string `json:"src,omitempty"`

	// Line.
	Start      []float64 `json:"start,omitempty"`
	End        []float64 `json:"end,omitempty"`
	LineWidth  *float64  `json:"lineWidth,omitempty"`
	LineStyle  string    `json:"lineStyle,omitempty"`
	ArrowBegin string    `json:"arrowBegin,omitempty"`
	ArrowEnd   string    `json:"arrowEnd,omitempty"`

	// Charts and tables carry a type-specific data blob.
	ChartType string          `json:"chartType,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	// Math.
	Formula string `json:"formula,omitempty"`

	// Group children.
	Elements []Node `json:"elements,omitempty"`
}

// Fill is the raw tagged fill descriptor shared by shapes and slide
// backgrounds.
type Fill struct {
	Type     string    `json:"type,omitempty"` // color, image, gradient
	Value    string    `json:"value,omitempty"`
	Image    *Image    `json:"image,omitempty"`
	Gradient *Gradient `json:"gradient,omitempty"`
}

// Image is an image fill or picture payload.
type Image struct {
	Src string `json:"src,omitempty"`
}

// Gradient is a raw gradient descriptor.
type Gradient struct {
	Type   string         `json:"type,omitempty"` // linear, radial
	Rotate float64        `json:"rotate,omitempty"`
	Colors []GradientStop `json:"colors,omitempty"`
}

// GradientStop is one raw gradient stop. Pos is a percentage (0-100).
type GradientStop struct {
	Pos   float64 `json:"pos"`
	Color string  `json:"color"`
}

// TableData is the decoded shape of a table node's data blob.
type TableData struct {
	Rows      [][]TableCell `json:"rows"`
	ColWidths []float64     `json:"colWidths,omitempty"`
}

// TableCell is one raw table cell.
type TableCell struct {
	Text    string `json:"text"`
	RowSpan int    `json:"rowSpan,omitempty"`
	ColSpan int    `json:"colSpan,omitempty"`
}

// ChartData is the decoded shape of a chart node's data blob.
type ChartData struct {
	Labels  []string    `json:"labels,omitempty"`
	Legends []string    `json:"legends,omitempty"`
	Series  [][]float64 `json:"series,omitempty"`
}
