package hal

import (
	"github.com/google/uuid"
	"github.com/glimmerhal/glimmer/engine/core"
)

// cleanupEntry pairs a destruction callback with a stable handle so an
// entry can be released early when its resource is destroyed by hand.
type cleanupEntry struct {
	id    uuid.UUID
	label string
	fn    func()
}

// CleanupRegistry records destruction callbacks in creation order and
// runs them in reverse, which is also the required teardown order for
// the GPU objects tracked here. It backs both orderly shutdown and the
// unwind path when construction fails partway.
type CleanupRegistry struct {
	entries []cleanupEntry
}

func NewCleanupRegistry() *CleanupRegistry {
	return &CleanupRegistry{}
}

// Register appends a callback and returns its handle.
func (r *CleanupRegistry) Register(label string, fn func()) uuid.UUID {
	id := uuid.New()
	r.entries = append(r.entries, cleanupEntry{id: id, label: label, fn: fn})
	return id
}

// Release drops an entry without running it. Returns false when the
// handle is unknown (already run or released).
func (r *CleanupRegistry) Release(id uuid.UUID) bool {
	for i := range r.entries {
		if r.entries[i].id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many entries are pending.
func (r *CleanupRegistry) Len() int {
	return len(r.entries)
}

// Run executes all pending callbacks newest-first and clears the
// registry.
func (r *CleanupRegistry) Run() {
	for i := len(r.entries) - 1; i >= 0; i-- {
		core.LogDebug("Destroying %s...", r.entries[i].label)
		r.entries[i].fn()
	}
	r.entries = nil
}
