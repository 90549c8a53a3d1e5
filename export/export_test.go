package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/slidekit/slidekit/model"
)

func sampleDoc() *model.Document {
	doc := model.NewDocument("Quarterly Review")
	doc.Slides[0].Notes = "speaker notes\nsecond line"
	doc.Slides[0].Elements = []model.Element{
		{
			ID: "t1", Type: model.ElementText, ZIndex: 1,
			X: 100, Y: 50, Width: 400, Height: 80,
			Text: &model.TextPayload{Content: "<p><strong>Agenda</strong></p><ul><li>Numbers</li><li>Roadmap</li></ul>"},
		},
		{
			ID: "tbl", Type: model.ElementTable, ZIndex: 0,
			Table: &model.TablePayload{Rows: [][]model.TableCell{
				{{Text: "Region"}, {Text: "Revenue"}},
				{{Text: "EMEA"}, {Text: "1.2M"}},
			}},
		},
	}
	doc.Theme = model.Theme{Name: "dark", BackgroundColor: "#1e1e1e"}
	return doc
}

func TestJSONRoundTrip(t *testing.T) {
	doc := sampleDoc()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Title != doc.Title {
		t.Errorf("title = %q, want %q", got.Title, doc.Title)
	}
	if !reflect.DeepEqual(got.Slides, doc.Slides) {
		t.Errorf("slides did not round-trip:\ngot  %+v\nwant %+v", got.Slides, doc.Slides)
	}
	if !reflect.DeepEqual(got.Theme, doc.Theme) {
		t.Errorf("theme = %+v, want %+v", got.Theme, doc.Theme)
	}
}

func TestWriteJSONOmitsEmptyTheme(t *testing.T) {
	doc := model.NewDocument("plain")
	// Unstyled but non-nil theme colors still count as empty.
	doc.Theme = model.Theme{ThemeColors: []string{}}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.Contains(buf.String(), `"theme"`) {
		t.Errorf("empty theme serialized:\n%s", buf.String())
	}

	doc.Theme = model.Theme{ThemeColors: []string{"#112233"}}
	buf.Reset()
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"theme"`) {
		t.Error("theme with colors dropped")
	}
}

func TestReadJSONRejectsFutureVersion(t *testing.T) {
	r := strings.NewReader(`{"version": 99, "title": "x", "slides": []}`)
	if _, err := ReadJSON(r); err == nil {
		t.Fatal("expected error for future format version")
	}
}

func TestMarkdownOutline(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownWriter().Write(&buf, sampleDoc()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Quarterly Review",
		"## Slide 1",
		"**Agenda**",
		"Numbers",
		"| Region | Revenue |",
		"| EMEA | 1.2M |",
		"> speaker notes",
		"> second line",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	// The table sits below the text in z-order, so it renders first.
	if strings.Index(out, "Region") > strings.Index(out, "Agenda") {
		t.Error("elements not ordered by z-index")
	}
}
