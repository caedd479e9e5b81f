package nav

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache reuses compiled guard programs across evaluations.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes registry functions to guards, both by name
// and through call(name, args...).
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

// exprEvaluator runs guards with github.com/expr-lang/expr. It is the engine
// used when no other evaluator is configured.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs the default Evaluator, backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx GuardContext, expression string) (any, error) {
	guard, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return guard.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledGuard, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineExpr, fmt.Errorf("expression must not be empty"))
	}
	if e.cache != nil {
		if program, ok := e.cache.Get(expression); ok {
			if program, ok := program.(*exprvm.Program); ok {
				return exprGuard{evaluator: e, program: program, expression: expression}, nil
			}
		}
	}

	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.functionNames() {
		options = append(options, exprlang.Function(name, e.call(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapGuardError(EngineExpr, expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return exprGuard{evaluator: e, program: program, expression: expression}, nil
}

// exprGuard binds a compiled program to the evaluator that owns the functions
// it may call.
type exprGuard struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (g exprGuard) Evaluate(ctx GuardContext) (any, error) {
	ctx = ctx.withDefaults()
	env := ctx.binding()
	env["now"] = ctx.timestamp()
	if g.evaluator.registry != nil {
		env["call"] = g.evaluator.registry.Call
	}
	result, err := exprlang.Run(g.program, env)
	if err != nil {
		return nil, wrapGuardError(EngineExpr, g.expression, ctx.Route, err)
	}
	return result, nil
}

func (e *exprEvaluator) functionNames() []string {
	if e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEvaluator) call(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
