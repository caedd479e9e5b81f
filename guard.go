package nav

import (
	"fmt"
	"time"

	"github.com/goliatone/go-navigator/tree"
)

// GuardContext carries the inputs a route guard expression can read.
type GuardContext struct {
	Route string
	Next  State
	Prev  State
	// Data is the route's opaque data bag.
	Data map[string]any
	// Args are navigator-wide values supplied with WithGuardArgs.
	Args map[string]any
	Now  *time.Time
}

func (ctx GuardContext) withDefaults() GuardContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Data == nil {
		ctx.Data = map[string]any{}
	}
	return ctx
}

func (ctx GuardContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// binding is the variable set exposed to every engine.
func (ctx GuardContext) binding() map[string]any {
	return map[string]any{
		"route":  ctx.Route,
		"page":   ctx.Next.Page,
		"modal":  ctx.Next.Modal,
		"params": paramsBinding(ctx.Next.Params),
		"prev": map[string]any{
			"page":   ctx.Prev.Page,
			"modal":  ctx.Prev.Modal,
			"params": paramsBinding(ctx.Prev.Params),
		},
		"data": ctx.Data,
		"args": ctx.Args,
	}
}

func paramsBinding(params Params) map[string]any {
	out := make(map[string]any, len(params))
	for route, slice := range params {
		values := make(map[string]any, len(slice))
		for key, value := range slice {
			values[key] = value
		}
		out[route] = values
	}
	return out
}

// Evaluator executes guard expressions.
type Evaluator interface {
	Evaluate(ctx GuardContext, expr string) (any, error)
	Compile(expr string) (CompiledGuard, error)
}

// CompiledGuard is a reusable guard program.
type CompiledGuard interface {
	Evaluate(ctx GuardContext) (any, error)
}

func (n *Navigator) resolveEvaluator() (Evaluator, error) {
	if n.cfg.evaluator != nil {
		return n.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if n.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(n.cfg.programCache))
	}
	if n.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(n.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	n.cfg.evaluator = evaluator
	return evaluator, nil
}

// checkGuard evaluates node's guard for the next state. Guards must produce a
// bool; anything else is reported as ErrGuardResult.
func (n *Navigator) checkGuard(node *tree.Node, next, prev State) (bool, error) {
	if node.Guard == "" {
		return true, nil
	}
	evaluator, err := n.resolveEvaluator()
	if err != nil {
		return false, err
	}
	ctx := GuardContext{
		Route: node.Path,
		Next:  next,
		Prev:  prev,
		Data:  node.Data,
		Args:  n.cfg.guardArgs,
	}.withDefaults()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, node.Guard)
	allowed := false
	if evalErr == nil {
		result, ok := value.(bool)
		if !ok {
			evalErr = fmt.Errorf("%w: got %T", ErrGuardResult, value)
		}
		allowed = result
	}
	evalErr = wrapGuardError(engine, node.Guard, node.Path, evalErr)
	n.guardLogger().LogGuard(GuardLogEvent{
		Engine:   engine,
		Expr:     node.Guard,
		Route:    node.Path,
		Allowed:  allowed,
		Duration: time.Since(start),
		Err:      evalErr,
	})
	return allowed && evalErr == nil, evalErr
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*nav.exprEvaluator":
		return "expr"
	case "*nav.celEvaluator":
		return "cel"
	case "*nav.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
