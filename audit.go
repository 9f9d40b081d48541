package secstore

import (
	"context"

	"github.com/goliatone/go-secstore/pkg/audit"
)

// WithAuditHooks attaches audit hooks to the store. Hooks are cloned and nil
// entries dropped; nested stores created under the store share them. Applied
// writes and denied operations are emitted through an audit.Emitter, which
// stamps the channel; plain reads are not, so hot read paths stay quiet.
func WithAuditHooks(hooks audit.Hooks) Option {
	normalized := cloneAuditHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.auditHooks = normalized
	}
}

// WithAuditChannel sets the channel stamped on events the store emits. The
// emitter's default applies when unset.
func WithAuditChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.auditChannel = channel
	}
}

// AuditHooks returns a cloned slice of the audit hooks configured on the
// store. The returned slice can be safely mutated by the caller.
func (s *Store) AuditHooks() audit.Hooks {
	if s == nil {
		return nil
	}
	return cloneAuditHooks(s.auditHooks)
}

func (s *Store) emitWrite(path string, perm Permission) {
	if !s.emitter.Enabled() {
		return
	}
	_ = s.emitter.Emit(context.Background(), audit.BuildWriteEvent(audit.EventInput{
		StoreID:    s.id,
		Path:       path,
		Permission: string(perm),
	}))
}

func (s *Store) emitDenied(op, path string, perm Permission) {
	if !s.emitter.Enabled() {
		return
	}
	_ = s.emitter.Emit(context.Background(), audit.BuildDeniedEvent(audit.EventInput{
		StoreID:    s.id,
		Path:       path,
		Permission: string(perm),
		Op:         op,
	}))
}

func cloneAuditHooks(hooks audit.Hooks) audit.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]audit.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return audit.Hooks(normalized)
}
