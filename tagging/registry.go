// Package tagging implements the permission tag registry: a side table that
// associates an optional permission label with an (owner identity, field
// name) pair. It is deliberately decoupled from the store's own storage so
// distinct node instances sharing a field name can carry different tags.
package tagging

import "sync"

type key struct {
	owner string
	field string
}

// Registry stores permission labels keyed by owner identity and field name.
// Labels are opaque strings; interpretation belongs to the caller.
type Registry struct {
	mu   sync.RWMutex
	tags map[key]string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tags: make(map[key]string)}
}

// Tag records label for the (owner, field) pair, replacing any previous one.
// Empty owner or field names are ignored.
func (r *Registry) Tag(owner, field, label string) {
	if r == nil || owner == "" || field == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tags == nil {
		r.tags = make(map[key]string)
	}
	r.tags[key{owner: owner, field: field}] = label
}

// TagOf returns the label recorded for (owner, field), if any.
func (r *Registry) TagOf(owner, field string) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.tags[key{owner: owner, field: field}]
	return label, ok
}

// Untag removes the label recorded for (owner, field).
func (r *Registry) Untag(owner, field string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tags, key{owner: owner, field: field})
}

// DropOwner removes every label recorded against owner.
func (r *Registry) DropOwner(owner string) {
	if r == nil || owner == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.tags {
		if k.owner == owner {
			delete(r.tags, k)
		}
	}
}

// Len returns the number of recorded labels.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tags)
}
