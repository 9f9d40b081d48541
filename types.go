package secstore

import (
	"sort"

	"github.com/goliatone/go-secstore/pkg/audit"
	"github.com/goliatone/go-secstore/tagging"
)

// Permission controls field access. A tag carrying a permission always
// overrides the owning node's default policy for that field.
type Permission string

const (
	// PermissionRead allows reads only.
	PermissionRead Permission = "r"
	// PermissionWrite allows writes only.
	PermissionWrite Permission = "w"
	// PermissionReadWrite allows both operations. Stores default to it.
	PermissionReadWrite Permission = "rw"
	// PermissionNone denies both operations.
	PermissionNone Permission = "none"
)

// CanRead reports whether the permission admits reads.
func (p Permission) CanRead() bool {
	return p == PermissionRead || p == PermissionReadWrite
}

// CanWrite reports whether the permission admits writes.
func (p Permission) CanWrite() bool {
	return p == PermissionWrite || p == PermissionReadWrite
}

// Valid reports whether p is one of the four recognised labels.
func (p Permission) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionReadWrite, PermissionNone:
		return true
	default:
		return false
	}
}

// ParsePermission converts a registry label into a Permission. Unrecognised
// labels resolve to (zero, false) so callers fall back to the default policy.
func ParsePermission(label string) (Permission, bool) {
	p := Permission(label)
	if !p.Valid() {
		return "", false
	}
	return p, true
}

// Option configures a Store at construction.
type Option func(*storeConfig)

type storeConfig struct {
	policy     Permission
	policySet  bool
	registry     *tagging.Registry
	logger       AccessLogger
	auditHooks   audit.Hooks
	auditChannel string
	cache        ProgramCache
	functions  *FunctionRegistry
	seeds      []seedField
	tags       []seedTag
}

type seedField struct {
	name  string
	value any
}

type seedTag struct {
	field      string
	permission Permission
}

func applyStoreOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithDefaultPolicy sets the node's default policy explicitly. Invalid
// permissions are ignored and the store keeps the construction default.
func WithDefaultPolicy(p Permission) Option {
	return func(cfg *storeConfig) {
		if !p.Valid() {
			return
		}
		cfg.policy = p
		cfg.policySet = true
	}
}

// WithRegistry shares an existing permission tag registry with the store.
// Nested stores created under it always join the same registry.
func WithRegistry(registry *tagging.Registry) Option {
	return func(cfg *storeConfig) {
		cfg.registry = registry
	}
}

// WithField seeds a single field at construction. Plain-object values become
// nested stores inheriting the node's policy.
func WithField(name string, value any) Option {
	return func(cfg *storeConfig) {
		if name == "" {
			return
		}
		cfg.seeds = append(cfg.seeds, seedField{name: name, value: value})
	}
}

// WithFields seeds multiple fields at construction, applied in sorted key
// order for determinism.
func WithFields(fields map[string]any) Option {
	return func(cfg *storeConfig) {
		if len(fields) == 0 {
			return
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cfg.seeds = append(cfg.seeds, seedField{name: name, value: fields[name]})
		}
	}
}

// WithFieldPermission tags a field on the new store at construction,
// overriding the default policy for that field.
func WithFieldPermission(name string, p Permission) Option {
	return func(cfg *storeConfig) {
		if name == "" || !p.Valid() {
			return
		}
		cfg.tags = append(cfg.tags, seedTag{field: name, permission: p})
	}
}
