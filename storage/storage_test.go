package storage

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/slidekit/slidekit/deckdb"
	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/resource"
	_ "modernc.org/sqlite"
)

func testManager(t *testing.T, cfg Config) (*Manager, *resource.Manager) {
	t.Helper()
	db := deckdb.OpenMemory(t)
	res := resource.New(db, resource.Config{})
	m := New(db, res, cfg)
	ctx := context.Background()
	if err := res.Init(ctx); err != nil {
		t.Fatalf("resource Init: %v", err)
	}
	if err := m.Init(ctx); err != nil {
		t.Fatalf("storage Init: %v", err)
	}
	return m, res
}

const testDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

func sampleDoc() *model.Document {
	return &model.Document{
		Title: "persisted deck",
		Slides: []model.Slide{
			{
				ID: "slide-1",
				Elements: []model.Element{
					{
						ID: "el-text", Type: model.ElementText,
						X: 10, Y: 20, Width: 300, Height: 80,
						Text: &model.TextPayload{Content: strings.Repeat("lorem ipsum ", 40), FontSize: 16},
					},
					{
						ID: "el-img", Type: model.ElementImage,
						X: 50, Y: 50, Width: 200, Height: 150,
						Image: &model.ImagePayload{Src: model.Inline(testDataURI), FixedRatio: true},
					},
				},
			},
			{ID: "slide-2", Notes: "second slide"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	// A tiny chunk size forces the multi-chunk path.
	m, _ := testManager(t, Config{ChunkSize: 128})
	ctx := context.Background()

	doc := sampleDoc()
	if err := m.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil after a save")
	}
	if loaded.Title != doc.Title {
		t.Errorf("title = %q", loaded.Title)
	}
	if !reflect.DeepEqual(loaded.Slides, doc.Slides) {
		t.Errorf("slides do not round-trip:\ngot  %+v\nwant %+v", loaded.Slides, doc.Slides)
	}

	info, err := m.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !info.Saved || info.Chunks < 2 || info.Checksum == "" {
		t.Errorf("Info = %+v, want saved multi-chunk state with checksum", info)
	}
	if info.OriginalSize < 128 {
		t.Errorf("original size = %d", info.OriginalSize)
	}
}

func TestSaveDoesNotMutateLiveDocument(t *testing.T) {
	m, _ := testManager(t, Config{})
	doc := sampleDoc()

	if err := m.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	src := doc.Slides[0].Elements[1].Image.Src
	if src.Kind != model.SourceInline || src.Data != testDataURI {
		t.Errorf("live document was mutated by save: %+v", src)
	}
}

func TestSaveExtractsInlineMedia(t *testing.T) {
	m, res := testManager(t, Config{})
	ctx := context.Background()

	if err := m.Save(ctx, sampleDoc()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stats, err := res.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count != 1 || stats.Orphans != 0 {
		t.Errorf("resource stats = %+v, want one referenced resource", stats)
	}

	// The loaded document gets the payload re-inflated.
	loaded, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	src := loaded.Slides[0].Elements[1].Image.Src
	if src.Kind != model.SourceInline || src.Data != testDataURI {
		t.Errorf("inflated source = %+v", src)
	}
}

func TestExternalURLStaysInline(t *testing.T) {
	m, res := testManager(t, Config{})
	ctx := context.Background()

	doc := &model.Document{Slides: []model.Slide{{
		ID: "s",
		Elements: []model.Element{{
			ID: "el", Type: model.ElementImage,
			Image: &model.ImagePayload{Src: model.Inline("https://example.com/pic.png")},
		}},
	}}}
	if err := m.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if stats, _ := res.Stats(ctx); stats.Count != 0 {
		t.Errorf("URL source was extracted: %+v", stats)
	}
}

func TestLoadNothingPersisted(t *testing.T) {
	m, _ := testManager(t, Config{})
	doc, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc != nil {
		t.Errorf("Load = %+v, want nil when nothing is persisted", doc)
	}
}

func TestSaveInProgressGuard(t *testing.T) {
	m, _ := testManager(t, Config{})
	m.saving.Store(true)
	if err := m.Save(context.Background(), sampleDoc()); err != ErrSaveInProgress {
		t.Errorf("Save = %v, want ErrSaveInProgress", err)
	}
}

func TestNilDatabaseNoOps(t *testing.T) {
	m := New(nil, resource.New(nil, resource.Config{}), Config{})
	ctx := context.Background()

	if err := m.Save(ctx, sampleDoc()); err != nil {
		t.Errorf("Save: %v", err)
	}
	if doc, err := m.Load(ctx); err != nil || doc != nil {
		t.Errorf("Load = %v, %v", doc, err)
	}
	if err := m.Clear(ctx); err != nil {
		t.Errorf("Clear: %v", err)
	}
	if info, err := m.Info(ctx); err != nil || info.Saved {
		t.Errorf("Info = %+v, %v", info, err)
	}
}

func TestClear(t *testing.T) {
	m, res := testManager(t, Config{})
	ctx := context.Background()

	if err := m.Save(ctx, sampleDoc()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if doc, err := m.Load(ctx); err != nil || doc != nil {
		t.Errorf("Load after clear = %v, %v", doc, err)
	}
	// References are dropped; blobs linger until the sweep collects them.
	if stats, _ := res.Stats(ctx); stats.Orphans != stats.Count {
		t.Errorf("stats after clear = %+v, want everything orphaned", stats)
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		in    string
		size  int
		want  int
		first string
	}{
		{"", 4, 1, ""},
		{"abc", 4, 1, "abc"},
		{"abcd", 4, 1, "abcd"},
		{"abcde", 4, 2, "abcd"},
		{"abcdefgh", 4, 2, "abcd"},
		{"abcdefghi", 4, 3, "abcd"},
	}
	for _, tt := range tests {
		got := splitChunks(tt.in, tt.size)
		if len(got) != tt.want || got[0] != tt.first {
			t.Errorf("splitChunks(%q, %d) = %v, want %d chunks starting %q",
				tt.in, tt.size, got, tt.want, tt.first)
		}
		if joined := strings.Join(got, ""); joined != tt.in {
			t.Errorf("splitChunks(%q, %d) loses data: %q", tt.in, tt.size, joined)
		}
	}
}

func TestAutoSaverDebouncedMutationSave(t *testing.T) {
	saved := make(chan struct{}, 8)
	saver := NewAutoSaver(func(context.Context) error {
		saved <- struct{}{}
		return nil
	}, AutoSaveOptions{
		Interval:       time.Hour, // keep the periodic path out of this test
		SaveOnMutation: true,
		Debounce:       10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()

	// A burst coalesces into one debounced save.
	saver.Notify()
	saver.Notify()
	saver.Notify()

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced save never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}

	// One debounced save plus the shutdown save.
	if n := saver.Saves(); n < 2 {
		t.Errorf("saves = %d, want at least 2", n)
	}
}

func TestAutoSaverNotifyIgnoredWhenDisabled(t *testing.T) {
	saver := NewAutoSaver(func(context.Context) error { return nil }, AutoSaveOptions{})
	saver.Notify() // must not block or panic with no Run loop
	select {
	case <-saver.notify:
		t.Error("Notify queued a save with SaveOnMutation disabled")
	default:
	}
}
