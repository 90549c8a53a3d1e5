// Package storage persists the document state: binary payloads are pulled
// out into the resource store, the remainder is JSON-encoded, split into
// size-bounded chunks and written with a checksum in one transaction. Load
// reassembles, verifies and re-inflates. The in-memory document is never
// at risk: save failures only leave the persisted copy stale.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/resource"
)

// ErrSaveInProgress reports a save that was dropped because another save is
// still running. A throttling policy, not a failure: the next save captures
// the latest state anyway.
var ErrSaveInProgress = errors.New("storage: save already in progress")

// Config configures a Manager.
type Config struct {
	// ChunkSize bounds each stored chunk in bytes (default: 512 KiB).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// DocKey is the fixed key the document state is stored under
	// (default: "document-state").
	DocKey string `json:"doc_key" yaml:"doc_key"`

	// MaxRetries and RetryBase tune the save retry/backoff policy
	// (defaults: 3 retries, 250ms base, doubling).
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	RetryBase  time.Duration `json:"retry_base" yaml:"retry_base"`

	// Logger for persistence events.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 512 * 1024
	}
	if c.DocKey == "" {
		c.DocKey = "document-state"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 250 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager persists documents. A nil database makes every operation a no-op,
// so the same code path is safe in contexts without local storage.
type Manager struct {
	db     *sql.DB
	res    *resource.Manager
	cfg    Config
	saving atomic.Bool
}

// New creates a Manager. res may be a pass-through resource manager; db may
// be nil for the no-op mode.
func New(db *sql.DB, res *resource.Manager, cfg Config) *Manager {
	cfg.defaults()
	return &Manager{db: db, res: res, cfg: cfg}
}

const schema = `
CREATE TABLE IF NOT EXISTS document_chunks (
    doc_key TEXT NOT NULL,
    idx     INTEGER NOT NULL,
    data    TEXT NOT NULL,
    PRIMARY KEY (doc_key, idx)
);
CREATE TABLE IF NOT EXISTS document_meta (
    doc_key       TEXT PRIMARY KEY,
    total_chunks  INTEGER NOT NULL,
    original_size INTEGER NOT NULL,
    checksum      TEXT NOT NULL,
    saved_at      INTEGER NOT NULL
);
`

// Init creates the persistence tables.
func (m *Manager) Init(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	return nil
}

// Save persists the document. The document is deep-copied first; the live
// state is never mutated. Concurrent saves are dropped, failed writes are
// retried with exponential backoff and then given up on with a log entry.
func (m *Manager) Save(ctx context.Context, doc *model.Document) error {
	if m.db == nil || doc == nil {
		return nil
	}
	if !m.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer m.saving.Store(false)

	snapshot := doc.Clone()
	refs, err := m.extractResources(ctx, snapshot)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("storage: encode document: %w", err)
	}
	sum := sha256.Sum256(payload)
	checksum := hex.EncodeToString(sum[:])
	chunks := splitChunks(string(payload), m.cfg.ChunkSize)

	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := m.cfg.RetryBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("storage: save cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
		lastErr = m.writeChunks(ctx, chunks, len(payload), checksum)
		if lastErr == nil {
			break
		}
		m.cfg.Logger.Warn("save attempt failed", "attempt", attempt+1, "error", lastErr)
	}
	if lastErr != nil {
		// Give up: the in-memory document survives, only the persisted
		// copy is stale.
		m.cfg.Logger.Error("save abandoned after retries", "retries", m.cfg.MaxRetries, "error", lastErr)
		return lastErr
	}

	if err := m.res.SyncReferences(ctx, refs); err != nil {
		m.cfg.Logger.Warn("reference sync failed", "error", err)
	}
	if _, err := m.res.CleanupUnused(ctx); err != nil {
		m.cfg.Logger.Warn("resource sweep failed", "error", err)
	}

	m.cfg.Logger.Debug("document saved",
		"bytes", len(payload), "chunks", len(chunks), "checksum", checksum[:8])
	return nil
}

// writeChunks replaces the stored state in a single transaction: chunks and
// metadata commit together, a save can never leave chunks without matching
// metadata.
func (m *Manager) writeChunks(ctx context.Context, chunks []string, size int, checksum string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE doc_key = ?`, m.cfg.DocKey); err != nil {
		return fmt.Errorf("storage: clear chunks: %w", err)
	}
	for i, c := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_chunks (doc_key, idx, data) VALUES (?,?,?)`,
			m.cfg.DocKey, i, c); err != nil {
			return fmt.Errorf("storage: write chunk %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO document_meta (doc_key, total_chunks, original_size, checksum, saved_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(doc_key) DO UPDATE SET
			total_chunks = excluded.total_chunks,
			original_size = excluded.original_size,
			checksum = excluded.checksum,
			saved_at = excluded.saved_at`,
		m.cfg.DocKey, len(chunks), size, checksum, time.Now().Unix()); err != nil {
		return fmt.Errorf("storage: write metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Load reassembles the persisted document, or returns (nil, nil) when there
// is nothing usable — the caller substitutes a fresh document. A checksum
// mismatch is logged but recovery is still attempted.
func (m *Manager) Load(ctx context.Context) (*model.Document, error) {
	if m.db == nil {
		return nil, nil
	}

	var total, size int
	var checksum string
	var savedAt int64
	err := m.db.QueryRowContext(ctx, `
		SELECT total_chunks, original_size, checksum, saved_at
		FROM document_meta WHERE doc_key = ?`, m.cfg.DocKey).
		Scan(&total, &size, &checksum, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read metadata: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT data FROM document_chunks WHERE doc_key = ? ORDER BY idx`, m.cfg.DocKey)
	if err != nil {
		return nil, fmt.Errorf("storage: read chunks: %w", err)
	}
	defer rows.Close()

	var payload []byte
	var got int
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: scan chunk: %w", err)
		}
		payload = append(payload, data...)
		got++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read chunks: %w", err)
	}
	if got != total {
		m.cfg.Logger.Warn("incomplete chunk set, discarding state", "got", got, "want", total)
		return nil, nil
	}

	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != checksum {
		// Best-effort recovery: warn and still try to decode.
		m.cfg.Logger.Warn("checksum mismatch on load", "stored", checksum[:8])
	}

	var doc model.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		m.cfg.Logger.Warn("persisted state undecodable, discarding", "error", err)
		return nil, nil
	}

	m.inflateResources(ctx, &doc)
	return &doc, nil
}

// Clear removes the persisted state and drops every resource reference; the
// next sweep collects the orphaned blobs.
func (m *Manager) Clear(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE doc_key = ?`, m.cfg.DocKey); err != nil {
		return fmt.Errorf("storage: clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_meta WHERE doc_key = ?`, m.cfg.DocKey); err != nil {
		return fmt.Errorf("storage: clear metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: clear: commit: %w", err)
	}
	return m.res.SyncReferences(ctx, nil)
}

// Info summarizes the persisted state.
type Info struct {
	Saved        bool           `json:"saved"`
	SavedAt      time.Time      `json:"savedAt,omitzero"`
	Chunks       int            `json:"chunks"`
	OriginalSize int            `json:"originalSize"`
	Checksum     string         `json:"checksum,omitempty"`
	Resources    resource.Stats `json:"resources"`
}

// Info reports what is currently persisted.
func (m *Manager) Info(ctx context.Context) (Info, error) {
	var info Info
	if m.db == nil {
		return info, nil
	}
	var savedAt int64
	err := m.db.QueryRowContext(ctx, `
		SELECT total_chunks, original_size, checksum, saved_at
		FROM document_meta WHERE doc_key = ?`, m.cfg.DocKey).
		Scan(&info.Chunks, &info.OriginalSize, &info.Checksum, &savedAt)
	if err != nil && err != sql.ErrNoRows {
		return info, fmt.Errorf("storage: info: %w", err)
	}
	if err == nil {
		info.Saved = true
		info.SavedAt = time.Unix(savedAt, 0)
	}
	stats, err := m.res.Stats(ctx)
	if err != nil {
		return info, err
	}
	info.Resources = stats
	return info, nil
}

// splitChunks slices s into at most chunkSize-byte pieces. Small documents
// stay in one chunk.
func splitChunks(s string, chunkSize int) []string {
	if len(s) <= chunkSize {
		return []string{s}
	}
	chunks := make([]string, 0, len(s)/chunkSize+1)
	for len(s) > chunkSize {
		chunks = append(chunks, s[:chunkSize])
		s = s[chunkSize:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}
