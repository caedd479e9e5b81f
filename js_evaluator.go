//go:build js_eval

package nav

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation
// runs in a fresh runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEvaluator) Evaluate(ctx GuardContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	if e.cache == nil {
		return e.run(ctx, expression, nil)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapGuardError("js", expression, ctx.Route, err)
	}
	return e.run(ctx, expression, program)
}

func (e *jsEvaluator) Compile(expression string) (CompiledGuard, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapGuardError("js", expression, "", err)
	}
	return &jsCompiledGuard{evaluator: e, expression: expression, program: program}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx GuardContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	if err := e.inject(vm, ctx); err != nil {
		return nil, wrapGuardError("js", expression, ctx.Route, err)
	}
	var (
		value goja.Value
		err   error
	)
	if program != nil {
		value, err = vm.RunProgram(program)
	} else {
		value, err = vm.RunString(wrapJSExpression(expression))
	}
	if err != nil {
		return nil, wrapGuardError("js", expression, ctx.Route, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) inject(vm *goja.Runtime, ctx GuardContext) error {
	for key, value := range ctx.binding() {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	if err := vm.Set("now", ctx.timestamp()); err != nil {
		return err
	}
	if e.registry == nil {
		return nil
	}
	if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}); err != nil {
		return err
	}
	for _, name := range e.registry.Names() {
		fn := name
		if err := vm.Set(fn, func(arguments ...any) (any, error) {
			return e.registry.Call(fn, arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledGuard struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (g *jsCompiledGuard) Evaluate(ctx GuardContext) (any, error) {
	return g.evaluator.run(ctx.withDefaults(), g.expression, g.program)
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}
