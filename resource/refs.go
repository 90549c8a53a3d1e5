package resource

import (
	"context"
	"fmt"
)

// Reference records one owner of a resource: the element (or slide, for
// backgrounds) holding it and the slide it lives on.
type Reference struct {
	ResourceID string
	ElementID  string
	SlideIndex int
}

// AddReference registers an owner and increments the reference count.
// Re-registering the same (resource, element) pair is idempotent.
func (m *Manager) AddReference(ctx context.Context, resourceID, elementID string, slideIndex int) error {
	if m.db == nil || resourceID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO resource_refs (resource_id, element_id, slide_index)
		VALUES (?,?,?)`, resourceID, elementID, slideIndex)
	if err != nil {
		return fmt.Errorf("resource: add reference %s/%s: %w", resourceID, elementID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if err := m.bumpRefCount(ctx, resourceID, 1); err != nil {
			return err
		}
	}
	return nil
}

// RemoveReference releases an owner and decrements the reference count,
// never below zero. Unknown pairs are a no-op.
func (m *Manager) RemoveReference(ctx context.Context, resourceID, elementID string) error {
	if m.db == nil || resourceID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.db.ExecContext(ctx, `
		DELETE FROM resource_refs WHERE resource_id = ? AND element_id = ?`,
		resourceID, elementID)
	if err != nil {
		return fmt.Errorf("resource: remove reference %s/%s: %w", resourceID, elementID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if err := m.bumpRefCount(ctx, resourceID, -1); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseElements removes every reference owned by the given element ids.
// Element deletion cascades through group children into this.
func (m *Manager) ReleaseElements(ctx context.Context, elementIDs []string) error {
	if m.db == nil || len(elementIDs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, elID := range elementIDs {
		rows, err := m.db.QueryContext(ctx, `
			SELECT resource_id FROM resource_refs WHERE element_id = ?`, elID)
		if err != nil {
			return fmt.Errorf("resource: release %s: %w", elID, err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("resource: release %s: %w", elID, err)
			}
			ids = append(ids, id)
		}
		rows.Close()

		if len(ids) == 0 {
			continue
		}
		if _, err := m.db.ExecContext(ctx, `DELETE FROM resource_refs WHERE element_id = ?`, elID); err != nil {
			return fmt.Errorf("resource: release %s: %w", elID, err)
		}
		for _, id := range ids {
			if err := m.bumpRefCount(ctx, id, -1); err != nil {
				return err
			}
		}
	}
	return nil
}

// SyncReferences reconciles the reference table against the complete live
// set observed by a persistence pass: stale rows are dropped, new owners
// registered, and counts recomputed from the table.
func (m *Manager) SyncReferences(ctx context.Context, refs []Reference) error {
	if m.db == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resource: sync refs: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resource_refs`); err != nil {
		return fmt.Errorf("resource: sync refs: clear: %w", err)
	}
	for _, r := range refs {
		if r.ResourceID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO resource_refs (resource_id, element_id, slide_index)
			VALUES (?,?,?)`, r.ResourceID, r.ElementID, r.SlideIndex)
		if err != nil {
			return fmt.Errorf("resource: sync refs: insert: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE resources SET ref_count = (
			SELECT COUNT(*) FROM resource_refs WHERE resource_id = resources.id
		)`)
	if err != nil {
		return fmt.Errorf("resource: sync refs: recount: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("resource: sync refs: commit: %w", err)
	}
	return nil
}

// RefCount returns the current reference count for id (0 for unknown ids).
func (m *Manager) RefCount(ctx context.Context, id string) (int, error) {
	if m.db == nil {
		return 0, nil
	}
	var n int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT ref_count FROM resources WHERE id = ?), 0)`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("resource: ref count %s: %w", id, err)
	}
	return n, nil
}

// bumpRefCount adjusts ref_count by delta, clamped at zero. Callers hold mu.
func (m *Manager) bumpRefCount(ctx context.Context, id string, delta int) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE resources SET ref_count = MAX(0, ref_count + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("resource: bump ref count %s: %w", id, err)
	}
	return nil
}
