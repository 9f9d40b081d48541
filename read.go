package secstore

import "time"

// Read resolves the value at path, returning ErrPermissionDenied (as an
// *AccessError) when the effective permission excludes reads. Missing fields
// resolve to nil rather than an error; an empty segment addresses no stored
// field, so paths like "a::b" resolve to nil unless a write created one. A
// producer at the leaf is invoked once per call.
func (s *Store) Read(path string) (any, error) {
	start := time.Now()
	segments := splitPath(path)
	perm := s.resolvePermission(segments, nil)
	if !perm.CanRead() {
		err := &AccessError{Op: opRead, Path: path, Permission: perm}
		s.logAccess(opRead, path, perm, time.Since(start), err)
		s.emitDenied(opRead, path, perm)
		return nil, err
	}
	value, err := s.getNested(segments, path)
	s.logAccess(opRead, path, perm, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ReadWithTrace resolves path like Read while recording the permission
// provenance of every step walked. The trace is returned even when the read
// is denied.
func (s *Store) ReadWithTrace(path string) (any, AccessTrace, error) {
	start := time.Now()
	segments := splitPath(path)
	steps := make([]TraceStep, 0, len(segments))
	perm := s.resolvePermission(segments, &steps)
	trace := AccessTrace{
		Path:       path,
		Permission: perm,
		Allowed:    perm.CanRead(),
		Steps:      steps,
	}
	if !perm.CanRead() {
		err := &AccessError{Op: opRead, Path: path, Permission: perm}
		s.logAccess(opRead, path, perm, time.Since(start), err)
		s.emitDenied(opRead, path, perm)
		return nil, trace, err
	}
	value, err := s.getNested(segments, path)
	s.logAccess(opRead, path, perm, time.Since(start), err)
	if err != nil {
		return nil, trace, err
	}
	return value, trace, nil
}

// getNested walks segments from the node. Plain objects are stepped through
// like stores; producers reached mid-path are dispatched with the pending
// segment, and their store results resolve the remaining segments
// recursively. A producer left at the end of the walk is invoked with no
// arguments.
func (s *Store) getNested(segments []string, fullPath string) (any, error) {
	var acc any = s
	for i, segment := range segments {
		if hasField(acc, segment) && !isProducer(acc) {
			acc = stepInto(acc, segment)
			continue
		}
		if producer, ok := acc.(Producer); ok {
			result, err := invokeField(producer, segment)
			if err != nil {
				return nil, &ProducerError{Path: fullPath, Field: segment, Err: err}
			}
			if child, ok := result.(*Store); ok {
				return child.getNested(segments[i+1:], fullPath)
			}
			return chainProduce(result, segment, i == len(segments)-1, fullPath)
		}
		return nil, nil
	}
	if producer, ok := acc.(Producer); ok {
		value, err := producer.Produce()
		if err != nil {
			return nil, &ProducerError{Path: fullPath, Err: err}
		}
		return value, nil
	}
	return acc, nil
}

// chainProduce handles a mid-path producer result that is not a store: a
// further producer is invoked with the same segment, a plain value stands
// when the segment was the last one, anything else resolves to absent.
func chainProduce(result any, segment string, last bool, fullPath string) (any, error) {
	switch typed := result.(type) {
	case FieldProducer:
		value, err := typed.ProduceField(segment)
		if err != nil {
			return nil, &ProducerError{Path: fullPath, Field: segment, Err: err}
		}
		return value, nil
	case Producer:
		value, err := typed.Produce()
		if err != nil {
			return nil, &ProducerError{Path: fullPath, Field: segment, Err: err}
		}
		return value, nil
	default:
		if last {
			return typed, nil
		}
		return nil, nil
	}
}

func hasField(value any, field string) bool {
	switch typed := value.(type) {
	case *Store:
		_, ok := typed.get(field)
		return ok
	case map[string]any:
		_, ok := typed[field]
		return ok
	default:
		return false
	}
}
