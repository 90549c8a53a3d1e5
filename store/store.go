// Package store owns the in-memory document and is its sole mutation
// surface. Every mutator appends an undo snapshot on success unless the
// caller opts out, and mutations on unknown ids are silent no-ops: the UI
// layer is responsible for only issuing valid ids.
//
// Stores are explicitly constructed and passed by reference; there is no
// package-level shared state.
package store

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/slidekit/slidekit/idgen"
	"github.com/slidekit/slidekit/model"
)

// Config configures a Store.
type Config struct {
	// HistoryLimit caps the snapshot list for small documents; the cap
	// shrinks toward MinHistoryLimit as the serialized document grows
	// (defaults: 50 and 10).
	HistoryLimit    int `json:"history_limit" yaml:"history_limit"`
	MinHistoryLimit int `json:"min_history_limit" yaml:"min_history_limit"`

	// AdaptiveThreshold is the serialized size at which the cap starts
	// shrinking, halving per doubling (default: 1 MiB).
	AdaptiveThreshold int `json:"adaptive_threshold" yaml:"adaptive_threshold"`

	// SnapshotInterval rate-limits history growth under rapid editing:
	// a snapshot younger than this is replaced by skipping the new one.
	// Negative disables rate limiting (default: 1s).
	SnapshotInterval time.Duration `json:"snapshot_interval" yaml:"snapshot_interval"`

	// ElementIDs, SlideIDs and GroupIDs override the id generators.
	ElementIDs idgen.Generator `json:"-" yaml:"-"`
	SlideIDs   idgen.Generator `json:"-" yaml:"-"`
	GroupIDs   idgen.Generator `json:"-" yaml:"-"`

	// OnMutate, when set, is called after every successful mutation
	// (the autosave notification hook).
	OnMutate func() `json:"-" yaml:"-"`

	// ReleaseElements, when set, is called with the ids of deleted
	// elements (group children included) so their resource references
	// can be dropped.
	ReleaseElements func(elementIDs []string) `json:"-" yaml:"-"`

	// Logger for history degradation events.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.MinHistoryLimit <= 0 {
		c.MinHistoryLimit = 10
	}
	if c.AdaptiveThreshold <= 0 {
		c.AdaptiveThreshold = 1 << 20
	}
	if c.SnapshotInterval == 0 {
		c.SnapshotInterval = time.Second
	}
	if c.ElementIDs == nil {
		c.ElementIDs = idgen.Element
	}
	if c.SlideIDs == nil {
		c.SlideIDs = idgen.Slide
	}
	if c.GroupIDs == nil {
		c.GroupIDs = idgen.Group
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Store holds one document and its undo history.
type Store struct {
	mu  sync.Mutex
	cfg Config
	doc *model.Document

	history  []model.Snapshot
	pos      int // current position in history
	lastSnap time.Time
}

// New creates a Store around doc (a fresh empty document when nil) and
// seeds the history with the initial state.
func New(doc *model.Document, cfg Config) *Store {
	cfg.defaults()
	if doc == nil {
		doc = model.NewDocument("Untitled")
	}
	if doc.ActiveSlideIndex >= len(doc.Slides) {
		doc.ActiveSlideIndex = 0
	}
	s := &Store{cfg: cfg, doc: doc}
	s.history = []model.Snapshot{s.snapshotOf("initial state")}
	return s
}

// Document returns the live document. Callers must treat it as read-only;
// all mutation goes through the store.
func (s *Store) Document() *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Replace swaps in a newly loaded document, resetting history.
func (s *Store) Replace(doc *model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		doc = model.NewDocument("Untitled")
	}
	if doc.ActiveSlideIndex >= len(doc.Slides) || doc.ActiveSlideIndex < 0 {
		doc.ActiveSlideIndex = 0
	}
	s.doc = doc
	s.history = []model.Snapshot{s.snapshotOf("loaded state")}
	s.pos = 0
	s.lastSnap = time.Time{}
}

// mutateOpts collects per-call mutation options.
type mutateOpts struct {
	snapshot bool
	desc     string
}

// MutateOption customizes a single mutation call.
type MutateOption func(*mutateOpts)

// NoSnapshot marks the mutation as transient (e.g. a drag update) so it
// does not flood the history.
func NoSnapshot() MutateOption {
	return func(o *mutateOpts) { o.snapshot = false }
}

// WithDescription overrides the snapshot description.
func WithDescription(desc string) MutateOption {
	return func(o *mutateOpts) { o.desc = desc }
}

// finish runs the post-mutation bookkeeping. Callers hold mu.
func (s *Store) finish(desc string, opts []MutateOption) {
	o := mutateOpts{snapshot: true, desc: desc}
	for _, opt := range opts {
		opt(&o)
	}
	if o.snapshot {
		s.takeSnapshot(o.desc)
	}
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
}

func (s *Store) snapshotOf(desc string) model.Snapshot {
	return model.Snapshot{
		Slides:           model.CloneSlides(s.doc.Slides),
		ActiveSlideIndex: s.doc.ActiveSlideIndex,
		Description:      desc,
		TakenAt:          time.Now(),
	}
}

// takeSnapshot appends an undo snapshot, truncating any redo branch and
// enforcing the adaptive cap. Rapid successive snapshots are skipped to
// bound history growth under interactive editing.
func (s *Store) takeSnapshot(desc string) {
	now := time.Now()
	if s.cfg.SnapshotInterval > 0 && now.Sub(s.lastSnap) < s.cfg.SnapshotInterval && s.pos == len(s.history)-1 {
		// Within the rate window: fold into the current snapshot instead
		// of growing the history.
		s.history[s.pos] = s.snapshotOf(desc)
		return
	}
	s.lastSnap = now

	if s.pos < len(s.history)-1 {
		// Discard the redo branch.
		s.history = s.history[:s.pos+1]
	}
	s.history = append(s.history, s.snapshotOf(desc))
	s.pos = len(s.history) - 1

	cap := s.historyCap()
	if excess := len(s.history) - cap; excess > 0 {
		s.history = append(s.history[:0:0], s.history[excess:]...)
		s.pos -= excess
		if s.pos < 0 {
			s.pos = 0
		}
	}
}

// historyCap computes the adaptive snapshot cap: full for small documents,
// halving per doubling of serialized size down to the minimum.
func (s *Store) historyCap() int {
	data, err := json.Marshal(s.doc.Slides)
	if err != nil {
		// Degenerate state: keep a minimal tail rather than losing the
		// in-memory document.
		s.cfg.Logger.Warn("history size probe failed, truncating", "error", err)
		return s.cfg.MinHistoryLimit
	}
	limit := s.cfg.HistoryLimit
	for size := len(data); size > s.cfg.AdaptiveThreshold && limit > s.cfg.MinHistoryLimit; size >>= 1 {
		limit /= 2
	}
	if limit < s.cfg.MinHistoryLimit {
		limit = s.cfg.MinHistoryLimit
	}
	return limit
}

// restore replaces the live slides with the snapshot at pos.
func (s *Store) restore() {
	snap := s.history[s.pos]
	s.doc.Slides = model.CloneSlides(snap.Slides)
	s.doc.ActiveSlideIndex = snap.ActiveSlideIndex
	if s.doc.ActiveSlideIndex >= len(s.doc.Slides) {
		s.doc.ActiveSlideIndex = 0
	}
	// Selection may reference elements that no longer exist.
	s.doc.ActiveElementIDs = nil
}

// Undo steps back one snapshot. A no-op at the start of history.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == 0 {
		return false
	}
	s.pos--
	s.lastSnap = time.Time{}
	s.restore()
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
	return true
}

// Redo steps forward one snapshot. A no-op at the end of history.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.history)-1 {
		return false
	}
	s.pos++
	s.lastSnap = time.Time{}
	s.restore()
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
	return true
}

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos > 0
}

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos < len(s.history)-1
}

// HistoryLength returns the number of stored snapshots.
func (s *Store) HistoryLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// activeSlide returns the active slide. Callers hold mu.
func (s *Store) activeSlide() *model.Slide {
	if len(s.doc.Slides) == 0 {
		return nil
	}
	i := s.doc.ActiveSlideIndex
	if i < 0 || i >= len(s.doc.Slides) {
		return nil
	}
	return &s.doc.Slides[i]
}
