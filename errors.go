package secstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPermissionDenied indicates the resolved permission excludes the
	// requested operation.
	ErrPermissionDenied = errors.New("secstore: permission denied")
	// ErrInvalidPath indicates a write path whose computed leaf segment is
	// empty.
	ErrInvalidPath = errors.New("secstore: invalid path")
)

// AccessError reports a denied read or write along with the offending path
// and the permission that was resolved for it.
type AccessError struct {
	Op         string
	Path       string
	Permission Permission
}

func (e *AccessError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("secstore: %s %q denied (permission %q)", e.Op, e.Path, e.Permission)
}

func (e *AccessError) Unwrap() error {
	return ErrPermissionDenied
}

// PathError reports a write path that does not address a field: its leaf
// segment is empty.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("secstore: path %q does not address a field", e.Path)
}

func (e *PathError) Unwrap() error {
	return ErrInvalidPath
}

// ProducerError reports a producer invocation that failed during read
// resolution.
type ProducerError struct {
	Path  string
	Field string
	Err   error
}

func (e *ProducerError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field != "" {
		return fmt.Sprintf("secstore: producer at %q field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("secstore: producer at %q: %v", e.Path, e.Err)
}

func (e *ProducerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EngineError captures expression-engine metadata alongside the originating
// error for expression-backed producers.
type EngineError struct {
	Engine     string
	Expression string
	Field      string
	Err        error
}

func (e *EngineError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("secstore: %s producer %s field=%q: %v", e.Engine, describeExpression(e.Expression), e.Field, e.Err)
}

func (e *EngineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expression string) string {
	if expression == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expression)
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "secstore:") {
		return err
	}
	return fmt.Errorf("secstore: %s producer: %w", engine, err)
}

func wrapProduceError(engine, expression, field string, err error) error {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		if engineErr.Engine == "" {
			engineErr.Engine = engine
		}
		if engineErr.Expression == "" {
			engineErr.Expression = expression
		}
		if engineErr.Field == "" {
			engineErr.Field = field
		}
		return engineErr
	}

	return &EngineError{
		Engine:     engine,
		Expression: expression,
		Field:      field,
		Err:        err,
	}
}
