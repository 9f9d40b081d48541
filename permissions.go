package secstore

// permissionAt resolves the single-field permission on the node: the
// registry tag when present and valid, the default policy otherwise.
func (s *Store) permissionAt(field string) Permission {
	if label, ok := s.registry.TagOf(s.id, field); ok {
		if p, valid := ParsePermission(label); valid {
			return p
		}
	}
	return s.policy
}

func (s *Store) permissionSource(field string) (Permission, string) {
	if label, ok := s.registry.TagOf(s.id, field); ok {
		if p, valid := ParsePermission(label); valid {
			return p, traceSourceTag
		}
	}
	return s.policy, traceSourceDefault
}

// PermissionFor resolves the effective permission for path.
func (s *Store) PermissionFor(path string) Permission {
	return s.resolvePermission(splitPath(path), nil)
}

// AllowedToRead reports whether the effective permission for path admits
// reads.
func (s *Store) AllowedToRead(path string) bool {
	return s.PermissionFor(path).CanRead()
}

// AllowedToWrite reports whether the effective permission for path admits
// writes.
func (s *Store) AllowedToWrite(path string) bool {
	return s.PermissionFor(path).CanWrite()
}

// resolvePermission walks the path against stored nodes and the registry.
// Single-segment paths and producer-valued first segments resolve on the
// receiver alone. Longer paths descend, re-resolving a candidate at every
// index stepped into; the candidate at the last index reached wins, so a
// missing intermediate field leaves an earlier candidate in force. Fallback
// at every step is the receiver's own default policy.
func (s *Store) resolvePermission(segments []string, steps *[]TraceStep) Permission {
	if s == nil {
		return PermissionNone
	}
	if len(segments) == 0 {
		if steps != nil {
			*steps = append(*steps, TraceStep{Permission: s.policy, Source: traceSourceDefault})
		}
		return s.policy
	}

	first, _ := s.get(segments[0])
	if len(segments) < 2 || isProducer(first) {
		perm, source := s.permissionSource(segments[0])
		if steps != nil {
			*steps = append(*steps, TraceStep{Field: segments[0], Permission: perm, Source: source, Stepped: true})
		}
		return perm
	}

	perm, source := s.permissionSource(segments[0])
	if steps != nil {
		*steps = append(*steps, TraceStep{Field: segments[0], Permission: perm, Source: source, Stepped: truthy(first)})
	}
	current := first
	for i := 1; i < len(segments) && truthy(current); i++ {
		perm, source = tagOrDefault(current, segments[i], s.policy)
		current = stepInto(current, segments[i])
		if steps != nil {
			*steps = append(*steps, TraceStep{Field: segments[i], Permission: perm, Source: source, Stepped: truthy(current)})
		}
	}
	return perm
}

// Tag records a permission for one of the node's own fields.
func (s *Store) Tag(field string, p Permission) {
	if s == nil || field == "" || !p.Valid() {
		return
	}
	s.registry.Tag(s.id, field, string(p))
}

// TagOf returns the permission recorded for one of the node's own fields.
func (s *Store) TagOf(field string) (Permission, bool) {
	if s == nil {
		return "", false
	}
	label, ok := s.registry.TagOf(s.id, field)
	if !ok {
		return "", false
	}
	return ParsePermission(label)
}

// TagAt records a permission for the field addressed by path, creating the
// intermediate nodes the same way a write would. Tagging is a declarative
// surface and is not itself permission checked.
func (s *Store) TagAt(path string, p Permission) error {
	if s == nil {
		return nil
	}
	segments := splitPath(path)
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return &PathError{Path: path}
	}
	node := s
	for _, segment := range segments[:len(segments)-1] {
		node = node.ensureChild(segment)
	}
	node.Tag(segments[len(segments)-1], p)
	return nil
}

// tagOrDefault reads the registry tag for field on the value stepped into,
// when that value is a store; anything else has no tags.
func tagOrDefault(value any, field string, fallback Permission) (Permission, string) {
	if child, ok := value.(*Store); ok {
		return childTagOrDefault(child, field, fallback)
	}
	return fallback, traceSourceDefault
}

func childTagOrDefault(child *Store, field string, fallback Permission) (Permission, string) {
	if label, ok := child.registry.TagOf(child.id, field); ok {
		if p, valid := ParsePermission(label); valid {
			return p, traceSourceTag
		}
	}
	return fallback, traceSourceDefault
}

// stepInto advances the walk one field. Only stores and plain objects can be
// stepped into.
func stepInto(value any, field string) any {
	switch typed := value.(type) {
	case *Store:
		v, _ := typed.get(field)
		return v
	case map[string]any:
		return typed[field]
	default:
		return nil
	}
}

// truthy mirrors the reference system's loose walk guard: nil, false, empty
// strings and numeric zero stop the descent.
func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case int:
		return typed != 0
	case int32:
		return typed != 0
	case int64:
		return typed != 0
	case float32:
		return typed != 0
	case float64:
		return typed != 0
	default:
		return true
	}
}
