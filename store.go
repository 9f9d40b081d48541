package secstore

import (
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-secstore/internal/deepcopy"
	"github.com/goliatone/go-secstore/pkg/audit"
	"github.com/goliatone/go-secstore/tagging"
)

// Store is a tree node mapping field names to values. Field values are
// JSON-style primitives, plain objects and arrays, nested stores, or
// producers. Access is resolved per field against the shared tag registry,
// falling back to the node's default policy.
type Store struct {
	id        string
	policy    Permission
	policySet bool

	order  []string
	fields map[string]any

	registry   *tagging.Registry
	logger     AccessLogger
	auditHooks audit.Hooks
	emitter    *audit.Emitter
	cache      ProgramCache
	functions  *FunctionRegistry
}

// New constructs a Store. Without options the store uses a fresh registry
// and a default policy of PermissionReadWrite.
func New(opts ...Option) *Store {
	cfg := applyStoreOptions(opts)
	s := &Store{
		id:     uuid.NewString(),
		policy: PermissionReadWrite,
		fields: make(map[string]any),
	}
	if cfg.policySet {
		s.policy = cfg.policy
		s.policySet = true
	}
	s.registry = cfg.registry
	if s.registry == nil {
		s.registry = tagging.NewRegistry()
	}
	s.logger = cfg.logger
	if s.logger == nil {
		s.logger = noopAccessLogger{}
	}
	s.auditHooks = cfg.auditHooks
	if s.auditHooks.Enabled() {
		s.emitter = audit.NewEmitter(s.auditHooks, audit.Config{
			Enabled: true,
			Channel: cfg.auditChannel,
		})
	}
	s.cache = cfg.cache
	s.functions = cfg.functions

	for _, seed := range cfg.seeds {
		s.seed(seed.name, seed.value)
	}
	for _, tag := range cfg.tags {
		s.registry.Tag(s.id, tag.field, string(tag.permission))
	}
	return s
}

// ID returns the store's identity used to key the tag registry and audit
// events.
func (s *Store) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// DefaultPolicy returns the fallback permission applied to untagged fields.
func (s *Store) DefaultPolicy() Permission {
	if s == nil {
		return PermissionNone
	}
	return s.policy
}

// SetDefaultPolicy replaces the node's default policy. Invalid permissions
// are ignored.
func (s *Store) SetDefaultPolicy(p Permission) {
	if s == nil || !p.Valid() {
		return
	}
	s.policy = p
	s.policySet = true
}

// Registry returns the tag registry shared by the tree.
func (s *Store) Registry() *tagging.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Functions returns the function registry configured for expression
// producers bound to this store, if any.
func (s *Store) Functions() *FunctionRegistry {
	if s == nil {
		return nil
	}
	return s.functions
}

// Programs returns the program cache configured for expression producers
// bound to this store, if any.
func (s *Store) Programs() ProgramCache {
	if s == nil {
		return nil
	}
	return s.cache
}

// Fields returns the node's own field names in insertion order.
func (s *Store) Fields() []string {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of fields set on the node.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Entries returns a snapshot of the node's own fields whose single-segment
// permission admits reads. Producer values are returned as stored, not
// invoked.
func (s *Store) Entries() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.order))
	for _, name := range s.order {
		value, ok := s.fields[name]
		if !ok {
			continue
		}
		if !s.permissionAt(name).CanRead() {
			continue
		}
		out[name] = value
	}
	return out
}

// Snapshot returns a JSON-shaped deep copy of the readable subtree: nested
// stores become plain maps and values are detached from the tree. Producers
// are skipped so snapshotting stays free of side effects.
func (s *Store) Snapshot() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.order))
	for _, name := range s.order {
		value, ok := s.fields[name]
		if !ok || isProducer(value) {
			continue
		}
		if !s.permissionAt(name).CanRead() {
			continue
		}
		if child, isStore := value.(*Store); isStore {
			out[name] = child.Snapshot()
			continue
		}
		out[name] = deepcopy.Clone(value)
	}
	return out
}

// WriteEntries writes each entry through the public Write contract in sorted
// key order. There is no atomicity across entries: the first failing write
// stops iteration but earlier writes stay applied.
func (s *Store) WriteEntries(entries map[string]any) error {
	if s == nil || len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := s.Write(key, entries[key]); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep-copies the node and its subtree. Clones join the same registry
// under fresh identities, carrying over the per-field tags of each node.
func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}
	clone := &Store{
		id:         uuid.NewString(),
		policy:     s.policy,
		policySet:  s.policySet,
		fields:     make(map[string]any, len(s.fields)),
		registry:   s.registry,
		logger:     s.logger,
		auditHooks: s.auditHooks,
		emitter:    s.emitter,
		cache:      s.cache,
		functions:  s.functions,
	}
	for _, name := range s.order {
		value := s.fields[name]
		if child, ok := value.(*Store); ok {
			clone.set(name, child.Clone())
		} else if isProducer(value) {
			clone.set(name, value)
		} else {
			clone.set(name, deepcopy.Clone(value))
		}
		if label, ok := s.registry.TagOf(s.id, name); ok {
			clone.registry.Tag(clone.id, name, label)
		}
	}
	return clone
}

func (s *Store) get(field string) (any, bool) {
	value, ok := s.fields[field]
	return value, ok
}

func (s *Store) set(field string, value any) {
	if _, exists := s.fields[field]; !exists {
		s.order = append(s.order, field)
	}
	s.fields[field] = value
}

// newChild builds a nested store inheriting the node's policy and shared
// collaborators.
func (s *Store) newChild() *Store {
	child := New(WithRegistry(s.registry), WithDefaultPolicy(s.policy))
	child.logger = s.logger
	child.auditHooks = s.auditHooks
	child.emitter = s.emitter
	child.cache = s.cache
	child.functions = s.functions
	return child
}

// seed assigns construction-time fields without permission checks or tagging.
func (s *Store) seed(name string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		child := s.newChild()
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			child.seed(key, typed[key])
		}
		s.set(name, child)
	case *Store:
		s.set(name, typed.Clone())
	default:
		s.set(name, value)
	}
}
