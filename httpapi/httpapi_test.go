package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slidekit/slidekit/deckdb"
	"github.com/slidekit/slidekit/importer"
	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/pptx"
	"github.com/slidekit/slidekit/resource"
	"github.com/slidekit/slidekit/storage"
	"github.com/slidekit/slidekit/store"
	_ "modernc.org/sqlite"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db := deckdb.OpenMemory(t)
	res := resource.New(db, resource.Config{})
	if err := res.Init(context.Background()); err != nil {
		t.Fatalf("resource init: %v", err)
	}
	stg := storage.New(db, res, storage.Config{})
	if err := stg.Init(context.Background()); err != nil {
		t.Fatalf("storage init: %v", err)
	}
	return &Service{
		Store:     store.New(nil, store.Config{SnapshotInterval: -1}),
		Storage:   stg,
		Resources: res,
		Importer:  importer.New(importer.Config{}),
		Parser:    pptx.New(pptx.Config{}),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doJSON(t, testService(t).Router(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d, want 200", w.Code)
	}
}

func TestImportJSONTree(t *testing.T) {
	svc := testService(t)
	router := svc.Router()

	tree := `{"size": {"width": 960, "height": 540}, "title": "Imported", "slides": [
	  {"elements": [{"type": "text", "content": "<p>Hi</p>", "left": 96, "top": 96, "width": 480, "height": 96}]}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/import?format=json", strings.NewReader(tree))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", w.Code, w.Body.String())
	}

	doc := svc.Store.Document()
	if doc.Title != "Imported" || len(doc.Slides) != 1 {
		t.Fatalf("document = %q with %d slides", doc.Title, len(doc.Slides))
	}
	if len(doc.Slides[0].Elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(doc.Slides[0].Elements))
	}
}

func TestImportEmptyTreeRejected(t *testing.T) {
	router := testService(t).Router()
	req := httptest.NewRequest(http.MethodPost, "/api/import?format=json", strings.NewReader(`{"slides": []}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("import of empty deck = %d, want 422", w.Code)
	}
}

func TestElementLifecycleOverHTTP(t *testing.T) {
	svc := testService(t)
	router := svc.Router()

	el := model.Element{
		Type: model.ElementText, X: 10, Y: 10, Width: 100, Height: 40,
		Text: &model.TextPayload{Content: "hello"},
	}
	w := doJSON(t, router, http.MethodPost, "/api/elements", el)
	if w.Code != http.StatusCreated {
		t.Fatalf("add element = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("bad create response %q: %v", w.Body.String(), err)
	}

	el.ID = created.ID
	el.X = 200
	w = doJSON(t, router, http.MethodPatch, "/api/elements/"+created.ID, el)
	if w.Code != http.StatusOK {
		t.Fatalf("update element = %d", w.Code)
	}
	if got := svc.Store.Document().Slides[0].ElementByID(created.ID).X; got != 200 {
		t.Fatalf("element X = %v, want 200", got)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/elements/nope", el)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update of unknown element = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/document/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo = %d", w.Code)
	}
	var undo struct {
		Applied bool `json:"applied"`
	}
	json.Unmarshal(w.Body.Bytes(), &undo)
	if !undo.Applied {
		t.Fatal("undo reported not applied")
	}

	w = doJSON(t, router, http.MethodDelete, "/api/elements", map[string][]string{"ids": {created.ID}})
	if w.Code != http.StatusOK {
		t.Fatalf("delete elements = %d", w.Code)
	}
}

func TestOrderOps(t *testing.T) {
	svc := testService(t)
	router := svc.Router()
	a := svc.Store.AddElement(model.Element{Type: model.ElementShape, Shape: &model.ShapePayload{Category: model.ShapeRectangle}})
	svc.Store.AddElement(model.Element{Type: model.ElementShape, Shape: &model.ShapePayload{Category: model.ShapeCircle}})

	w := doJSON(t, router, http.MethodPost, "/api/elements/order", map[string]string{"id": a, "op": "front"})
	if w.Code != http.StatusOK {
		t.Fatalf("order = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/elements/order", map[string]string{"id": a, "op": "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad order op = %d, want 400", w.Code)
	}
}

func TestSaveLoadRoundTripOverHTTP(t *testing.T) {
	svc := testService(t)
	router := svc.Router()
	svc.Store.SetTitle("persisted")
	svc.Store.AddElement(model.Element{Type: model.ElementText, Text: &model.TextPayload{Content: "x"}})

	if w := doJSON(t, router, http.MethodPost, "/api/storage/save", nil); w.Code != http.StatusOK {
		t.Fatalf("save = %d: %s", w.Code, w.Body.String())
	}
	svc.Store.Replace(model.NewDocument("other"))
	if w := doJSON(t, router, http.MethodPost, "/api/storage/load", nil); w.Code != http.StatusOK {
		t.Fatalf("load = %d: %s", w.Code, w.Body.String())
	}
	if got := svc.Store.Document().Title; got != "persisted" {
		t.Fatalf("loaded title = %q, want %q", got, "persisted")
	}

	w := doJSON(t, router, http.MethodGet, "/api/storage/info", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "saved") {
		t.Fatalf("info = %d: %s", w.Code, w.Body.String())
	}
}

func TestResourceNotFound(t *testing.T) {
	router := testService(t).Router()
	w := doJSON(t, router, http.MethodGet, "/api/resources/res_missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("resource fetch = %d, want 404", w.Code)
	}
}

func TestResourceRoundTripOverHTTP(t *testing.T) {
	svc := testService(t)
	router := svc.Router()
	payload := []byte("fake image bytes")
	added, err := svc.Resources.Add(context.Background(), payload, resource.TypeImage, "image/png", "pic.png")
	if err != nil {
		t.Fatalf("add resource: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/resources/%s", added.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("resource fetch = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Errorf("payload mismatch: %q", w.Body.Bytes())
	}
}

func TestExportMarkdownOverHTTP(t *testing.T) {
	svc := testService(t)
	router := svc.Router()
	svc.Store.SetTitle("Outline Me")
	svc.Store.AddElement(model.Element{Type: model.ElementText, Text: &model.TextPayload{Content: "<p>body text</p>"}})

	w := doJSON(t, router, http.MethodGet, "/api/export/markdown", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	out := w.Body.String()
	if !strings.Contains(out, "# Outline Me") || !strings.Contains(out, "body text") {
		t.Fatalf("markdown output missing content:\n%s", out)
	}
}
