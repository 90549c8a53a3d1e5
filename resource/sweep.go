package resource

import (
	"context"
	"fmt"
)

// CleanupUnused removes resources whose reference count is zero, but only
// once enough of them have accumulated to amortize the sweep. Dereferencing
// never deletes eagerly; this keeps the mutation path cheap and lets undo,
// clipboard and history keep resurrecting recently-orphaned media.
func (m *Manager) CleanupUnused(ctx context.Context) (removed int, err error) {
	if m.db == nil {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var orphans int
	err = m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources WHERE ref_count = 0`).Scan(&orphans)
	if err != nil {
		return 0, fmt.Errorf("resource: count orphans: %w", err)
	}
	if orphans < m.cfg.CleanupThreshold {
		return 0, nil
	}

	res, err := m.db.ExecContext(ctx, `DELETE FROM resources WHERE ref_count = 0`)
	if err != nil {
		return 0, fmt.Errorf("resource: sweep: %w", err)
	}
	n, _ := res.RowsAffected()
	m.cfg.Logger.Info("resource sweep removed orphans", "count", n)
	return int(n), nil
}

// Stats summarizes the store for the storage-info surface.
type Stats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"totalBytes"`
	Orphans    int   `json:"orphans"`
}

// Stats reports store totals. Zero in pass-through mode.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	if m.db == nil {
		return Stats{}, nil
	}
	var s Stats
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0),
		       COALESCE(SUM(CASE WHEN ref_count = 0 THEN 1 ELSE 0 END), 0)
		FROM resources`).Scan(&s.Count, &s.TotalBytes, &s.Orphans)
	if err != nil {
		return Stats{}, fmt.Errorf("resource: stats: %w", err)
	}
	return s, nil
}
