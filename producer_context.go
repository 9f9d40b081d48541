package secstore

import "time"

// SnapshotFunc supplies the environment snapshot expression producers
// evaluate against.
type SnapshotFunc func() map[string]any

// BindStore adapts a store to a SnapshotFunc over its readable subtree.
// Producers inside the store are not part of the snapshot, which keeps a
// producer bound to its own store from recursing into itself.
func BindStore(s *Store) SnapshotFunc {
	return func() map[string]any {
		if s == nil {
			return nil
		}
		return s.Snapshot()
	}
}

// ProducerContext carries the inputs available to an expression producer
// invocation.
type ProducerContext struct {
	Field    string
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
}

func (ctx ProducerContext) withDefaultNow() ProducerContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx ProducerContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx ProducerContext) withDefaultArgs() ProducerContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}
