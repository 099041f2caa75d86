// Package history is the read path over the session store: a
// most-recent-first view that refreshes on open and on scan completion.
package history

import (
	"context"
	"sync"

	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

// Index presents the store newest first. It holds a snapshot; callers wire
// Refresh to the orchestrator's completion signal so the view tracks new
// scans.
type Index struct {
	store *store.SessionStore

	mu      sync.RWMutex
	entries []scan.Result
}

// NewIndex builds an Index over sessions and takes the first snapshot.
func NewIndex(sessions *store.SessionStore) *Index {
	ix := &Index{store: sessions}
	ix.Refresh()
	return ix
}

// Refresh re-reads the store.
func (ix *Index) Refresh() {
	all := ix.store.All()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	ix.mu.Lock()
	ix.entries = all
	ix.mu.Unlock()
}

// Entries returns the snapshot, most recent first.
func (ix *Index) Entries() []scan.Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]scan.Result, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the snapshot size.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// ByID returns the snapshot entry with the given id.
func (ix *Index) ByID(id string) (scan.Result, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, r := range ix.entries {
		if r.ID == id {
			return r, true
		}
	}
	return scan.Result{}, false
}

// Delete removes the entry from the store and returns the refreshed view.
// Absent ids are a no-op.
func (ix *Index) Delete(ctx context.Context, id string) []scan.Result {
	ix.store.DeleteByID(ctx, id)
	ix.Refresh()
	return ix.Entries()
}

// Clear empties the store and the view.
func (ix *Index) Clear(ctx context.Context) {
	ix.store.Clear(ctx)
	ix.Refresh()
}
