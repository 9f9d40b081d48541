//go:build js_eval

package secstore

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsProducer computes field values using goja.
type jsProducer struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
	snapshot   SnapshotFunc
	args       map[string]any
}

// NewJSProducer constructs a FieldProducer backed by goja. The expression
// sees the bound snapshot's fields, "now", "args", "field" and registered
// functions.
func NewJSProducer(expression string, opts ...JSProducerOption) FieldProducer {
	cfg := applyJSProducerOptions(opts)
	return &jsProducer{
		expression: expression,
		cache:      cfg.cache,
		registry:   cfg.registry,
		snapshot:   cfg.snapshot,
		args:       cfg.args,
	}
}

// Produce implements Producer.
func (p *jsProducer) Produce() (any, error) {
	return p.produce("")
}

// ProduceField implements FieldProducer.
func (p *jsProducer) ProduceField(field string) (any, error) {
	return p.produce(field)
}

func (p *jsProducer) produce(field string) (any, error) {
	if p.expression == "" {
		return nil, wrapEngineError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx := p.context(field)
	if p.cache == nil {
		return p.run(ctx, nil, field)
	}
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, err
	}
	return p.run(ctx, program, field)
}

func (p *jsProducer) context(field string) ProducerContext {
	ctx := ProducerContext{Field: field, Args: p.args}
	if p.snapshot != nil {
		ctx.Snapshot = p.snapshot()
	}
	return ctx.withDefaultNow().withDefaultArgs()
}

func (p *jsProducer) loadOrCompile() (*goja.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", p.wrapExpression(), false)
	if err != nil {
		return nil, wrapProduceError("js", p.expression, "", err)
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *jsProducer) run(ctx ProducerContext, program *goja.Program, field string) (any, error) {
	vm := goja.New()
	p.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapProduceError("js", p.expression, field, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(p.wrapExpression())
	if err != nil {
		return nil, wrapProduceError("js", p.expression, field, err)
	}
	return value.Export(), nil
}

func (p *jsProducer) injectContext(vm *goja.Runtime, ctx ProducerContext) {
	vm.Set("now", ctx.timestamp())
	vm.Set("args", ctx.Args)
	vm.Set("field", ctx.Field)
	for key, value := range ctx.Snapshot {
		vm.Set(key, value)
	}
	if p.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		})
		for _, name := range p.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			})
		}
	}
}

func (p *jsProducer) wrapExpression() string {
	return fmt.Sprintf("(function(){ return (%s); })()", p.expression)
}

func jsProducerAvailable() bool {
	return true
}
