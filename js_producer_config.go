package secstore

type jsProducerConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	snapshot SnapshotFunc
	args     map[string]any
}

// JSProducerOption configures the JS producer.
type JSProducerOption func(*jsProducerConfig)

// JSWithProgramCache applies a ProgramCache to the JS producer.
func JSWithProgramCache(cache ProgramCache) JSProducerOption {
	return func(cfg *jsProducerConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS producer.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSProducerOption {
	return func(cfg *jsProducerConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithSnapshot binds the snapshot supplier evaluated on every invocation.
func JSWithSnapshot(snapshot SnapshotFunc) JSProducerOption {
	return func(cfg *jsProducerConfig) {
		cfg.snapshot = snapshot
	}
}

// JSWithArgs sets static args exposed to the expression environment.
func JSWithArgs(args map[string]any) JSProducerOption {
	return func(cfg *jsProducerConfig) {
		cfg.args = args
	}
}

func applyJSProducerOptions(opts []JSProducerOption) jsProducerConfig {
	cfg := jsProducerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
