// Package resource is a content-addressed blob store for the binary payloads
// a presentation embeds (images, video, audio). Identical content is stored
// once and shared by reference; reference counting decides what the batched
// cleanup sweep may remove. The store is optional infrastructure: built
// without a database it degrades to pass-through and never blocks correctness.
package resource

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Type identifies the media kind of a stored blob.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeAudio Type = "audio"
)

// Config configures a Manager.
type Config struct {
	// MaxDedupSize is the payload size above which deduplication is
	// bypassed and the caller keeps the data inline (default: 5 MiB).
	// Indexing huge blobs costs more than it saves.
	MaxDedupSize int64 `json:"max_dedup_size" yaml:"max_dedup_size"`

	// HashPrefixSize bounds how much content feeds the fast hash
	// (default: 64 KiB).
	HashPrefixSize int `json:"hash_prefix_size" yaml:"hash_prefix_size"`

	// StrongHash switches the id from a prefix xxhash to a full BLAKE2b
	// digest of the content. Slower, collision-safe. Default: off.
	StrongHash bool `json:"strong_hash" yaml:"strong_hash"`

	// CleanupThreshold is the number of zero-reference resources that must
	// accumulate before a sweep actually deletes anything (default: 10).
	CleanupThreshold int `json:"cleanup_threshold" yaml:"cleanup_threshold"`

	// Logger for sweep and degradation messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxDedupSize <= 0 {
		c.MaxDedupSize = 5 * 1024 * 1024
	}
	if c.HashPrefixSize <= 0 {
		c.HashPrefixSize = 64 * 1024
	}
	if c.CleanupThreshold <= 0 {
		c.CleanupThreshold = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the resource tables. A nil database puts the manager in
// pass-through mode: Add reports bypass, Get misses, references are no-ops.
type Manager struct {
	db  *sql.DB
	cfg Config

	// Serializes add/reference paths; the store is shared by interactive
	// adds, import and persistence extraction.
	mu sync.Mutex
}

// New creates a Manager. db may be nil for pass-through mode.
func New(db *sql.DB, cfg Config) *Manager {
	cfg.defaults()
	return &Manager{db: db, cfg: cfg}
}

const schema = `
CREATE TABLE IF NOT EXISTS resources (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    mime_type  TEXT NOT NULL DEFAULT '',
    name       TEXT NOT NULL DEFAULT '',
    data       BLOB NOT NULL,
    size       INTEGER NOT NULL,
    ref_count  INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS resource_refs (
    resource_id TEXT NOT NULL,
    element_id  TEXT NOT NULL,
    slide_index INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (resource_id, element_id)
);
CREATE INDEX IF NOT EXISTS idx_refs_element ON resource_refs (element_id);
`

// Init creates the resource tables. No-op in pass-through mode.
func (m *Manager) Init(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("resource: init schema: %w", err)
	}
	return nil
}

// AddResult reports what Add did with a payload.
type AddResult struct {
	// ID is the content-addressed id, empty when Bypassed.
	ID string
	// Deduplicated is true when identical content was already stored.
	Deduplicated bool
	// Bypassed is true when the payload was too large to index (or the
	// manager is in pass-through mode); the caller keeps the data inline.
	Bypassed bool
}

// Add stores a payload and returns its content-addressed id. Identical
// content yields the existing id with its reference count untouched;
// ownership is tracked separately through AddReference.
func (m *Manager) Add(ctx context.Context, data []byte, typ Type, mimeType, name string) (AddResult, error) {
	if m.db == nil || int64(len(data)) > m.cfg.MaxDedupSize {
		return AddResult{Bypassed: true}, nil
	}

	id := m.hashID(data)

	m.mu.Lock()
	defer m.mu.Unlock()

	var exists int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return AddResult{}, fmt.Errorf("resource: lookup %s: %w", id, err)
	}
	if exists > 0 {
		return AddResult{ID: id, Deduplicated: true}, nil
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO resources (id, type, mime_type, name, data, size, ref_count, created_at)
		VALUES (?,?,?,?,?,?,0,?)`,
		id, string(typ), mimeType, name, data, len(data), time.Now().Unix())
	if err != nil {
		return AddResult{}, fmt.Errorf("resource: insert %s: %w", id, err)
	}
	return AddResult{ID: id}, nil
}

// Get returns the payload for id, or nil without error on a miss. Callers
// must tolerate nil media data (render a placeholder, not a crash).
func (m *Manager) Get(ctx context.Context, id string) ([]byte, error) {
	if m.db == nil || id == "" {
		return nil, nil
	}
	var data []byte
	err := m.db.QueryRowContext(ctx, `SELECT data FROM resources WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resource: get %s: %w", id, err)
	}
	return data, nil
}

// Resource is a stored media payload with its metadata.
type Resource struct {
	ID       string `json:"id"`
	Type     Type   `json:"type"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name,omitempty"`
	Data     []byte `json:"-"`
	Size     int64  `json:"size"`
	RefCount int    `json:"refCount"`
}

// Fetch returns the full resource record for id, or nil without error on
// a miss.
func (m *Manager) Fetch(ctx context.Context, id string) (*Resource, error) {
	if m.db == nil || id == "" {
		return nil, nil
	}
	res := &Resource{ID: id}
	err := m.db.QueryRowContext(ctx,
		`SELECT type, mime_type, name, data, size, ref_count FROM resources WHERE id = ?`, id).
		Scan(&res.Type, &res.MimeType, &res.Name, &res.Data, &res.Size, &res.RefCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resource: fetch %s: %w", id, err)
	}
	return res, nil
}

// hashID derives the content address. The fast default hashes a bounded
// prefix plus the total length; collisions are accepted as unlikely for
// editor media. StrongHash trades speed for a full BLAKE2b-256 digest.
func (m *Manager) hashID(data []byte) string {
	if m.cfg.StrongHash {
		sum := blake2b.Sum256(data)
		return "res_" + hex.EncodeToString(sum[:16])
	}
	prefix := data
	if len(prefix) > m.cfg.HashPrefixSize {
		prefix = prefix[:m.cfg.HashPrefixSize]
	}
	h := xxhash.New()
	h.Write(prefix)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	h.Write(lenBuf[:])
	return fmt.Sprintf("res_%016x", h.Sum64())
}
