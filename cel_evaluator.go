package nav

import (
	"fmt"
	"sort"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes registry through the CEL call() function.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Guard variables
// are declared dynamic; now is a timestamp.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx GuardContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapGuardError("cel", expression, ctx.Route, err)
	}
	return e.run(program, ctx.withDefaults(), expression)
}

func (e *celEvaluator) Compile(expression string) (CompiledGuard, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapGuardError("cel", expression, "", err)
	}
	return &celCompiledGuard{evaluator: e, program: program, expression: expression}, nil
}

func (e *celEvaluator) run(program *celProgram, ctx GuardContext, expression string) (any, error) {
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapGuardError("cel", expression, ctx.Route, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) loadOrCompile(expression string) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{env: env, program: prg}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
	}
	names := make([]string, 0, 8)
	for key := range (GuardContext{}).binding() {
		names = append(names, key)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(e.callBinding()),
		)))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx GuardContext) map[string]any {
	activation := ctx.binding()
	activation["now"] = ctx.timestamp()
	return activation
}

type celCompiledGuard struct {
	evaluator  *celEvaluator
	program    *celProgram
	expression string
}

func (g *celCompiledGuard) Evaluate(ctx GuardContext) (any, error) {
	return g.evaluator.run(g.program, ctx.withDefaults(), g.expression)
}

// callBinding backs call(name, [args...]).
func (e *celEvaluator) callBinding() functions.BinaryOp {
	return func(nameVal, argsVal ref.Val) ref.Val {
		name, ok := nameVal.Value().(string)
		if !ok {
			return types.NewErr("nav: call name must be string")
		}
		var args []any
		if list, ok := argsVal.(interface {
			Size() ref.Val
			Get(ref.Val) ref.Val
		}); ok {
			size, _ := list.Size().Value().(int64)
			for i := int64(0); i < size; i++ {
				args = append(args, list.Get(types.Int(i)).Value())
			}
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
