package secstore

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELProducerOption configures a CEL producer instance.
type CELProducerOption func(*celProducer)

// CELWithProgramCache wires a ProgramCache into the CEL producer.
func CELWithProgramCache(cache ProgramCache) CELProducerOption {
	return func(p *celProducer) {
		p.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL producer.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELProducerOption {
	return func(p *celProducer) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

// CELWithSnapshot binds the snapshot supplier evaluated on every invocation.
func CELWithSnapshot(snapshot SnapshotFunc) CELProducerOption {
	return func(p *celProducer) {
		p.snapshot = snapshot
	}
}

// CELWithArgs sets static args exposed to the expression environment.
func CELWithArgs(args map[string]any) CELProducerOption {
	return func(p *celProducer) {
		p.args = args
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celProducer computes field values using cel-go.
type celProducer struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
	snapshot   SnapshotFunc
	args       map[string]any
}

// NewCELProducer constructs a FieldProducer backed by cel-go. The expression
// sees the bound snapshot's fields, "now", "args", "field" and the "call"
// bridge into the function registry.
func NewCELProducer(expression string, opts ...CELProducerOption) FieldProducer {
	p := &celProducer{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Produce implements Producer.
func (p *celProducer) Produce() (any, error) {
	return p.produce("")
}

// ProduceField implements FieldProducer.
func (p *celProducer) ProduceField(field string) (any, error) {
	return p.produce(field)
}

func (p *celProducer) produce(field string) (any, error) {
	if p.expression == "" {
		return nil, wrapEngineError("cel", fmt.Errorf("expression must not be empty"))
	}
	snapshot := map[string]any{}
	if p.snapshot != nil {
		if bound := p.snapshot(); bound != nil {
			snapshot = bound
		}
	}
	ctx := ProducerContext{Field: field, Snapshot: snapshot, Args: p.args}.withDefaultNow().withDefaultArgs()
	program, err := p.loadOrCompile(snapshot)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(p.activation(ctx))
	if err != nil {
		return nil, wrapProduceError("cel", p.expression, field, err)
	}
	return out.Value(), nil
}

func (p *celProducer) loadOrCompile(snapshot map[string]any) (*celProgram, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := p.buildEnv(snapshot)
	if err != nil {
		return nil, wrapProduceError("cel", p.expression, "", err)
	}
	ast, issues := env.Parse(p.expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapProduceError("cel", p.expression, "", issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapProduceError("cel", p.expression, "", issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapProduceError("cel", p.expression, "", err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if p.cache != nil {
		p.cache.Set(p.expression, bundle)
	}
	return bundle, nil
}

func (p *celProducer) buildEnv(snapshot map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("field", celgo.StringType),
	}
	if p.registry != nil {
		binding := celgo.FunctionBinding(p.callBinding())
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_name",
				[]*celgo.Type{celgo.StringType}, celgo.DynType, binding),
			celgo.Overload("call_name_arg",
				[]*celgo.Type{celgo.StringType, celgo.DynType}, celgo.DynType, binding),
			celgo.Overload("call_name_arg_arg",
				[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType}, celgo.DynType, binding),
		))
	}
	for key := range snapshot {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (p *celProducer) activation(ctx ProducerContext) map[string]any {
	activation := map[string]any{
		"now":   ctx.timestamp(),
		"args":  ctx.Args,
		"field": ctx.Field,
	}
	for key, value := range ctx.Snapshot {
		activation[key] = value
	}
	return activation
}

func (p *celProducer) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if p.registry == nil {
			return types.NewErr("secstore: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("secstore: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("secstore: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := p.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
