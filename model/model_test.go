package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func deepSampleDoc() *Document {
	return &Document{
		Title: "deck",
		Slides: []Slide{{
			ID: "s1",
			Background: &Fill{Kind: FillImage, Image: &MediaSource{
				Kind: SourceInline, Data: "data:image/png;base64,BG==",
			}},
			Elements: []Element{
				{
					ID: "tbl", Type: ElementTable,
					Table: &TablePayload{
						Rows:      [][]TableCell{{{Text: "a"}, {Text: "b"}}},
						ColWidths: []float64{100, 200},
					},
				},
				{
					ID: "grp", Type: ElementGroup,
					Group: &GroupPayload{Children: []Element{
						{ID: "img", Type: ElementImage, Image: &ImagePayload{Src: Inline("data:image/png;base64,AA==")}},
						{ID: "sh", Type: ElementShape, Shape: &ShapePayload{
							Category: ShapeRectangle,
							Fill:     Fill{Kind: FillImage, Image: &MediaSource{Kind: SourceResource, ResourceID: "res_1"}},
						}},
					}},
				},
			},
		}},
		Theme: Theme{ThemeColors: []string{"#111111", "#222222"}},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := deepSampleDoc()
	cp := orig.Clone()

	if !reflect.DeepEqual(orig, cp) {
		t.Fatal("clone differs from original")
	}

	// Mutating the clone must never reach back into the original.
	cp.Slides[0].Elements[0].Table.Rows[0][0].Text = "mutated"
	cp.Slides[0].Elements[1].Group.Children[0].Image.Src.Data = "mutated"
	cp.Slides[0].Background.Image.Data = "mutated"
	cp.Theme.ThemeColors[0] = "#ffffff"

	if orig.Slides[0].Elements[0].Table.Rows[0][0].Text != "a" {
		t.Error("table cells are aliased")
	}
	if orig.Slides[0].Elements[1].Group.Children[0].Image.Src.Data != "data:image/png;base64,AA==" {
		t.Error("group child media is aliased")
	}
	if orig.Slides[0].Background.Image.Data != "data:image/png;base64,BG==" {
		t.Error("background fill is aliased")
	}
	if orig.Theme.ThemeColors[0] != "#111111" {
		t.Error("theme colors are aliased")
	}
}

func TestClonePreservesNilSlices(t *testing.T) {
	doc := &Document{
		Title:  "deck",
		Slides: []Slide{{ID: "s1"}}, // Elements deliberately nil
	}
	cp := doc.Clone()

	if cp.Slides[0].Elements != nil {
		t.Error("nil Elements became non-nil through Clone")
	}

	// A clone must serialize byte-identically to its source.
	want, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal original: %v", err)
	}
	got, err := json.Marshal(cp)
	if err != nil {
		t.Fatalf("marshal clone: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("clone serializes differently:\ngot  %s\nwant %s", got, want)
	}
}

func TestWalkMediaCoversNestedSources(t *testing.T) {
	doc := deepSampleDoc()
	owners := map[string]string{}
	doc.Slides[0].WalkMedia(func(elementID string, src *MediaSource) {
		owners[elementID] = src.Data + src.ResourceID
	})

	want := map[string]string{
		"s1":  "data:image/png;base64,BG==", // background, attributed to the slide
		"img": "data:image/png;base64,AA==",
		"sh":  "res_1", // shape image fill
	}
	if !reflect.DeepEqual(owners, want) {
		t.Errorf("visited = %v, want %v", owners, want)
	}
}

func TestWalkMediaMutatesInPlace(t *testing.T) {
	el := Element{ID: "img", Type: ElementImage, Image: &ImagePayload{Src: Inline("data:image/png;base64,AA==")}}
	el.WalkMedia(func(_ string, src *MediaSource) {
		*src = ResourceRef("res_9")
	})
	if el.Image.Src.Kind != SourceResource || el.Image.Src.ResourceID != "res_9" {
		t.Errorf("source after mutation = %+v", el.Image.Src)
	}
}

func TestOwnedElementIDs(t *testing.T) {
	plain := Element{ID: "solo"}
	if got := plain.OwnedElementIDs(); !reflect.DeepEqual(got, []string{"solo"}) {
		t.Errorf("plain element ids = %v", got)
	}

	grp := deepSampleDoc().Slides[0].Elements[1]
	want := []string{"grp", "img", "sh"}
	if got := grp.OwnedElementIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("group ids = %v, want %v", got, want)
	}
}

func TestSortByZIndex(t *testing.T) {
	s := Slide{Elements: []Element{
		{ID: "c", ZIndex: 2},
		{ID: "a", ZIndex: 0},
		{ID: "b2", ZIndex: 1},
		{ID: "b1", ZIndex: 1}, // equal index keeps stored order
	}}
	s.SortByZIndex()
	var ids []string
	for _, e := range s.Elements {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b2", "b1", "c"}) {
		t.Errorf("sorted order = %v", ids)
	}
}

func TestElementByID(t *testing.T) {
	s := deepSampleDoc().Slides[0]
	if el := s.ElementByID("tbl"); el == nil || el.Type != ElementTable {
		t.Errorf("ElementByID(tbl) = %v", el)
	}
	// Group children are addressed through their group, not directly.
	if el := s.ElementByID("img"); el != nil {
		t.Errorf("ElementByID(img) = %v, want nil", el)
	}
}
