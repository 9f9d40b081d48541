package secstore

import "time"

// AccessLogEvent describes one read or write attempt for logging.
type AccessLogEvent struct {
	Op         string
	Path       string
	Permission Permission
	Duration   time.Duration
	Err        error
}

// AccessLogger records store access events.
type AccessLogger interface {
	LogAccess(AccessLogEvent)
}

// AccessLoggerFunc adapts a function to AccessLogger.
type AccessLoggerFunc func(AccessLogEvent)

// LogAccess implements AccessLogger.
func (f AccessLoggerFunc) LogAccess(event AccessLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopAccessLogger struct{}

func (noopAccessLogger) LogAccess(AccessLogEvent) {}

// WithAccessLogger attaches an access logger to the store. Nested stores
// created under it share the logger.
func WithAccessLogger(logger AccessLogger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopAccessLogger{}
			return
		}
		cfg.logger = logger
	}
}

func (s *Store) logAccess(op, path string, perm Permission, duration time.Duration, err error) {
	s.logger.LogAccess(AccessLogEvent{
		Op:         op,
		Path:       path,
		Permission: perm,
		Duration:   duration,
		Err:        err,
	})
}
