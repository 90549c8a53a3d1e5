package importer

import (
	"encoding/json"
	"testing"

	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/norm"
	"github.com/slidekit/slidekit/raw"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// unityDoc wraps slides in a page size that maps 1:1 onto the default
// canvas (750×421.875pt is exactly 1000×562.5px).
func unityDoc(slides ...raw.Slide) *raw.Document {
	return &raw.Document{
		Size:   raw.Size{Width: 750, Height: 421.875},
		Slides: slides,
	}
}

func TestImportDocumentErrNoSlides(t *testing.T) {
	imp := New(Config{})
	for _, rd := range []*raw.Document{nil, {}, {Slides: []raw.Slide{}}} {
		if _, err := imp.ImportDocument(rd); err != ErrNoSlides {
			t.Errorf("ImportDocument(%v) err = %v, want ErrNoSlides", rd, err)
		}
	}
}

func TestImportSlideCount(t *testing.T) {
	rd := unityDoc(
		raw.Slide{Elements: []raw.Node{{Type: "text", Content: "a"}}},
		raw.Slide{Elements: []raw.Node{{Type: "text", Content: "b"}}},
		raw.Slide{}, // empty slides import as empty, never dropped
	)
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if len(doc.Slides) != 3 {
		t.Fatalf("got %d slides, want 3", len(doc.Slides))
	}
	if len(doc.Slides[2].Elements) != 0 {
		t.Errorf("empty slide gained %d elements", len(doc.Slides[2].Elements))
	}
}

func TestGeometryScalingAndFallbacks(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "rect", Left: fp(75), Top: fp(30), Width: fp(150), Height: fp(60)},
		{Type: "shape", ShapType: "rect"}, // all geometry absent
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements

	// 75pt = 100px at unity scale.
	if els[0].X != 100 || els[0].Y != 40 || els[0].Width != 200 || els[0].Height != 80 {
		t.Errorf("scaled geometry = (%v,%v,%v,%v), want (100,40,200,80)",
			els[0].X, els[0].Y, els[0].Width, els[0].Height)
	}
	// Fallbacks are pixel values, applied unscaled.
	if els[1].X != norm.FallbackPosition || els[1].Width != norm.FallbackSize {
		t.Errorf("fallback geometry = (%v,%v)", els[1].X, els[1].Width)
	}
}

func TestZIndexBands(t *testing.T) {
	// Interleave types so source order disagrees with band order.
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "text", Content: "caption", Order: ip(0)},
		{Type: "image", Src: "data:image/png;base64,AA==", Order: ip(1)},
		{Type: "line", Order: ip(2)},
		{Type: "shape", ShapType: "rect", Order: ip(3)},
		{Type: "table", Order: ip(4)},
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements

	wantOrder := []model.ElementType{
		model.ElementImage, // band 0
		model.ElementShape, // band 1
		model.ElementLine,  // band 2
		model.ElementTable, // band 3
		model.ElementText,  // band 4
	}
	for i, want := range wantOrder {
		if els[i].Type != want {
			t.Errorf("position %d = %s, want %s", i, els[i].Type, want)
		}
		if els[i].ZIndex != i {
			t.Errorf("position %d ZIndex = %d, want %d", i, els[i].ZIndex, i)
		}
	}
}

func TestExplicitOrderTieBreaksWithinBand(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "rect", Name: "second", Order: ip(5)},
		{Type: "shape", ShapType: "ellipse", Name: "first", Order: ip(1)},
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements
	if els[0].Name != "first" || els[1].Name != "second" {
		t.Errorf("within-band order = [%s, %s], want [first, second]", els[0].Name, els[1].Name)
	}
}

func TestLayoutElementsPaintUnderContent(t *testing.T) {
	rd := unityDoc(raw.Slide{
		LayoutElements: []raw.Node{{Type: "shape", ShapType: "rect", Name: "template"}},
		Elements:       []raw.Node{{Type: "shape", ShapType: "rect", Name: "user"}},
	})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements
	if els[0].Name != "template" || els[1].Name != "user" {
		t.Errorf("order = [%s, %s], want layout first", els[0].Name, els[1].Name)
	}
}

func TestNestedGroupFlattening(t *testing.T) {
	// A group at (75,75)pt containing a shape and a nested group whose
	// own child must be spliced up to the top level.
	rd := unityDoc(raw.Slide{Elements: []raw.Node{{
		Type: "group", Left: fp(75), Top: fp(75), Width: fp(300), Height: fp(300),
		Elements: []raw.Node{
			{Type: "shape", ShapType: "rect", Name: "direct", Left: fp(150), Top: fp(150), Width: fp(75), Height: fp(75)},
			{
				Type: "group", Left: fp(225), Top: fp(225), Width: fp(150), Height: fp(150),
				Elements: []raw.Node{
					{Type: "shape", ShapType: "ellipse", Name: "nested", Left: fp(300), Top: fp(300), Width: fp(75), Height: fp(75)},
				},
			},
		},
	}}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements
	if len(els) != 1 || els[0].Type != model.ElementGroup {
		t.Fatalf("got %d top-level elements (%v), want one group", len(els), els)
	}
	children := els[0].Group.Children
	if len(children) != 2 {
		t.Fatalf("group has %d children, want 2 (nested group spliced)", len(children))
	}
	for _, c := range children {
		if c.Type == model.ElementGroup {
			t.Fatal("nested group survived flattening")
		}
	}
	// Group origin 75pt = 100px; direct child at 150pt = 200px absolute,
	// so 100px relative. Nested child at 300pt = 400px, so 300px relative.
	if children[0].Name != "direct" || children[0].X != 100 || children[0].Y != 100 {
		t.Errorf("direct child = %s at (%v,%v), want direct at (100,100)", children[0].Name, children[0].X, children[0].Y)
	}
	if children[1].Name != "nested" || children[1].X != 300 || children[1].Y != 300 {
		t.Errorf("nested child = %s at (%v,%v), want nested at (300,300)", children[1].Name, children[1].X, children[1].Y)
	}
	if children[0].ZIndex != 0 || children[1].ZIndex != 1 {
		t.Errorf("child z-indexes = %d,%d, want 0,1", children[0].ZIndex, children[1].ZIndex)
	}
}

func TestEmptyGroupDropped(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "group", Elements: []raw.Node{{Type: "group"}}},
		{Type: "text", Content: "alone"},
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if n := len(doc.Slides[0].Elements); n != 1 {
		t.Fatalf("got %d elements, want only the text", n)
	}
}

func TestShapeLineTokenRetyped(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "line", Width: fp(150), Height: fp(75)},
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	el := doc.Slides[0].Elements[0]
	if el.Type != model.ElementLine || el.Line == nil {
		t.Fatalf("element = %s, want a line with payload", el.Type)
	}
	// Default span is the box diagonal.
	if el.Line.End != [2]float64{200, 100} {
		t.Errorf("line end = %v, want box diagonal (200,100)", el.Line.End)
	}
	if el.Line.Width != 2 || el.Line.Color != norm.DefaultColor {
		t.Errorf("line defaults = width %v color %s", el.Line.Width, el.Line.Color)
	}
}

func TestTextHeightRecomputed(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{
			Type:    "text",
			Content: "<p>one</p><p>two</p><p>three</p>",
			Left:    fp(0), Top: fp(0), Width: fp(300), Height: fp(7.5), // 10px supplied
		},
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	el := doc.Slides[0].Elements[0]
	// 3 lines at default 16px and 1.5 line-height plus 20px padding.
	want := 3*16*1.5 + 20.0
	if el.Height != want {
		t.Errorf("height = %v, want recomputed %v", el.Height, want)
	}
	if el.Text.Content != "one\ntwo\nthree" {
		t.Errorf("content = %q", el.Text.Content)
	}

	// A generous supplied height is kept.
	rd.Slides[0].Elements[0].Height = fp(750) // 1000px
	doc, _ = New(Config{}).ImportDocument(rd)
	if got := doc.Slides[0].Elements[0].Height; got != 1000 {
		t.Errorf("generous height = %v, want 1000 kept", got)
	}
}

func TestShapeClassificationAndFill(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "custom", Path: "M 0 0 L 10 10 Z", ViewBox: []float64{200, 200}},
		{Type: "shape", ShapType: "ellipse", Fill: &raw.Fill{Type: "color", Value: "RGB(255, 0, 0)"}},
		{Type: "shape", ShapType: "rect"}, // nil fill defaults to white
	}})
	doc, err := New(Config{}).ImportDocument(rd)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	els := doc.Slides[0].Elements

	custom := els[0].Shape
	if custom.Category != model.ShapeCustom || custom.Path == "" || len(custom.ViewBox) != 2 {
		t.Errorf("custom shape = %+v", custom)
	}
	if els[1].Shape.Category != model.ShapeCircle {
		t.Errorf("ellipse category = %s", els[1].Shape.Category)
	}
	if els[2].Shape.Fill.Color != "#ffffff" {
		t.Errorf("default fill = %+v, want white", els[2].Shape.Fill)
	}
}

func TestShapeClassificationLowercasesFillColor(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "ellipse", Fill: &raw.Fill{Type: "color", Value: "#FFAA00"}},
	}})
	doc, _ := New(Config{}).ImportDocument(rd)
	if got := doc.Slides[0].Elements[0].Shape.Fill.Color; got != "#ffaa00" {
		t.Errorf("fill color = %q, want lowercased", got)
	}
}

func TestGradientFillKeepsDescriptor(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{{
		Type: "shape", ShapType: "rect",
		Fill: &raw.Fill{Type: "gradient", Gradient: &raw.Gradient{
			Type:   "linear",
			Rotate: 90,
			Colors: []raw.GradientStop{{Pos: 0, Color: "#ff0000"}, {Pos: 100, Color: "#0000ff"}},
		}},
	}}})
	doc, _ := New(Config{}).ImportDocument(rd)
	sp := doc.Slides[0].Elements[0].Shape
	if sp.Fill.Kind != model.FillGradient || sp.Fill.Color != "#ff0000" {
		t.Errorf("gradient fill = %+v, want first stop as flat color", sp.Fill)
	}
	if sp.Gradient == nil || len(sp.Gradient.Stops) != 2 {
		t.Fatalf("gradient side channel = %+v", sp.Gradient)
	}
	if sp.Gradient.Stops[1].Offset != 1 {
		t.Errorf("stop offset = %v, want 1 (percent scaled)", sp.Gradient.Stops[1].Offset)
	}
}

func TestTableImport(t *testing.T) {
	blob, _ := json.Marshal(raw.TableData{
		Rows:      [][]raw.TableCell{{{Text: "a"}, {Text: "b"}}},
		ColWidths: []float64{75, 150},
	})
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "table", Data: blob},
	}})
	doc, _ := New(Config{}).ImportDocument(rd)
	tp := doc.Slides[0].Elements[0].Table
	if len(tp.Rows) != 1 || tp.Rows[0][1].Text != "b" {
		t.Fatalf("table rows = %+v", tp.Rows)
	}
	if tp.ColWidths[0] != 100 || tp.ColWidths[1] != 200 {
		t.Errorf("col widths = %v, want points scaled to px", tp.ColWidths)
	}
}

func TestSlideBackgroundAndNotes(t *testing.T) {
	rd := unityDoc(raw.Slide{
		Fill: &raw.Fill{Type: "color", Value: "#123456"},
		Note: "verbatim notes\nwith lines",
	})
	doc, _ := New(Config{}).ImportDocument(rd)
	slide := doc.Slides[0]
	if slide.Background == nil || slide.Background.Color != "#123456" {
		t.Errorf("background = %+v", slide.Background)
	}
	if slide.Notes != "verbatim notes\nwith lines" {
		t.Errorf("notes = %q, want verbatim", slide.Notes)
	}
}

func TestOpacityAndRotationCarried(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "shape", ShapType: "rect", Rotate: fp(45), Alpha: fp(40)},
	}})
	doc, _ := New(Config{}).ImportDocument(rd)
	el := doc.Slides[0].Elements[0]
	if el.Rotation != 45 {
		t.Errorf("rotation = %v", el.Rotation)
	}
	if el.Opacity != 0.6 {
		t.Errorf("opacity = %v, want 0.6 from alpha 40", el.Opacity)
	}
}

func TestUnknownTypeFallsBackToText(t *testing.T) {
	rd := unityDoc(raw.Slide{Elements: []raw.Node{
		{Type: "smartart", Content: "diagram text"},
	}})
	doc, _ := New(Config{}).ImportDocument(rd)
	el := doc.Slides[0].Elements[0]
	if el.Type != model.ElementText || el.Text.Content != "diagram text" {
		t.Errorf("fallback element = %s %+v", el.Type, el.Text)
	}
}
