package secstore

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprProducerOption configures an expr producer instance.
type ExprProducerOption func(*exprProducer)

// ExprWithProgramCache wires a ProgramCache into the expr producer.
func ExprWithProgramCache(cache ProgramCache) ExprProducerOption {
	return func(p *exprProducer) {
		p.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr producer.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprProducerOption {
	return func(p *exprProducer) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

// ExprWithSnapshot binds the snapshot supplier evaluated on every
// invocation.
func ExprWithSnapshot(snapshot SnapshotFunc) ExprProducerOption {
	return func(p *exprProducer) {
		p.snapshot = snapshot
	}
}

// ExprWithArgs sets static args exposed to the expression environment.
func ExprWithArgs(args map[string]any) ExprProducerOption {
	return func(p *exprProducer) {
		p.args = args
	}
}

// exprProducer computes field values using github.com/expr-lang/expr.
type exprProducer struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
	snapshot   SnapshotFunc
	args       map[string]any
}

// NewExprProducer constructs a FieldProducer backed by expr-lang/expr. The
// expression sees the bound snapshot's fields, "now", "args", "field" (the
// requested field name, empty on leaf reads) and any registered functions.
func NewExprProducer(expression string, opts ...ExprProducerOption) FieldProducer {
	p := &exprProducer{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Produce implements Producer.
func (p *exprProducer) Produce() (any, error) {
	return p.produce("")
}

// ProduceField implements FieldProducer.
func (p *exprProducer) ProduceField(field string) (any, error) {
	return p.produce(field)
}

func (p *exprProducer) produce(field string) (any, error) {
	if p.expression == "" {
		return nil, wrapEngineError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx := p.context(field)
	env := p.environment(ctx)
	if p.cache == nil {
		result, err := exprlang.Eval(p.expression, env)
		if err != nil {
			return nil, wrapProduceError("expr", p.expression, field, err)
		}
		return result, nil
	}
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapProduceError("expr", p.expression, field, err)
	}
	return result, nil
}

func (p *exprProducer) context(field string) ProducerContext {
	ctx := ProducerContext{Field: field, Args: p.args}
	if p.snapshot != nil {
		ctx.Snapshot = p.snapshot()
	}
	return ctx.withDefaultNow().withDefaultArgs()
}

func (p *exprProducer) loadOrCompile() (*exprvm.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range p.registryNames() {
		fn := p.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(p.expression, options...)
	if err != nil {
		return nil, wrapProduceError("expr", p.expression, "", err)
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *exprProducer) environment(ctx ProducerContext) map[string]any {
	env := map[string]any{
		"now":   ctx.timestamp(),
		"args":  ctx.Args,
		"field": ctx.Field,
	}
	for key, value := range ctx.Snapshot {
		env[key] = value
	}
	if p.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		}
		for _, name := range p.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (p *exprProducer) registryNames() []string {
	if p == nil || p.registry == nil {
		return nil
	}
	return p.registry.Names()
}

func (p *exprProducer) registryFunction(name string) func(...any) (any, error) {
	if p == nil || p.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return p.registry.Call(name, arguments...)
	}
}
