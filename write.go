package secstore

import (
	"sort"
	"time"
)

const (
	opRead  = "read"
	opWrite = "write"
)

// Write stores value at path, returning the stored value. It fails with
// ErrInvalidPath (as a *PathError) when the computed leaf segment is empty
// ("", ":", "a:") and with ErrPermissionDenied (as an *AccessError) when the
// effective permission excludes writes. Empty intermediate segments are not
// rejected; they traverse like any other field name.
//
// A plain-object value merges into the nested store at path, creating it if
// needed: each entry recurses through the public Write contract of the
// sub-store, so per-field permissions are re-checked against the sub-store's
// own policy and siblings absent from the incoming object are preserved.
// Any other value is assigned directly and the (node, leaf) pair tagged with
// the containing node's current default policy.
func (s *Store) Write(path string, value any) (any, error) {
	start := time.Now()
	segments := splitPath(path)
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return nil, &PathError{Path: path}
	}
	perm := s.resolvePermission(segments, nil)
	if !perm.CanWrite() {
		err := &AccessError{Op: opWrite, Path: path, Permission: perm}
		s.logAccess(opWrite, path, perm, time.Since(start), err)
		s.emitDenied(opWrite, path, perm)
		return nil, err
	}
	stored, err := s.setNested(segments, value)
	s.logAccess(opWrite, path, perm, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.emitWrite(path, perm)
	return stored, nil
}

func (s *Store) setNested(segments []string, value any) (any, error) {
	node := s
	for _, segment := range segments[:len(segments)-1] {
		node = node.ensureChild(segment)
	}
	leaf := segments[len(segments)-1]

	if obj, ok := value.(map[string]any); ok && obj != nil {
		child := node.ensureChild(leaf)
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := child.Write(key, obj[key]); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}

	stored := value
	if nested, ok := value.(*Store); ok {
		// Single ownership: the tree never aliases a node at two paths.
		stored = nested.Clone()
	}
	node.set(leaf, stored)
	node.registry.Tag(node.id, leaf, string(node.policy))
	return stored, nil
}

// ensureChild returns the nested store at field, creating one when the field
// is absent or holds a non-store value. An existing child without an
// explicitly recorded default policy adopts the node's policy; a fresh child
// inherits it at the moment of creation. No tag is recorded for the pair.
func (s *Store) ensureChild(field string) *Store {
	if existing, ok := s.get(field); ok {
		if child, ok := existing.(*Store); ok {
			if !child.policySet {
				child.policy = s.policy
				child.policySet = true
			}
			return child
		}
	}
	child := s.newChild()
	s.set(field, child)
	return child
}
