package nav

import (
	"fmt"
	"strings"
)

// Guard engine names accepted by NewEvaluatorFor and Config.GuardEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluatorFor builds the evaluator for engine, sharing cache and registry.
// An empty engine selects expr. The js engine needs the js_eval build tag.
func NewEvaluatorFor(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case EngineJS:
		evaluator := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}

type jsEvaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the goja guard evaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache applies a ProgramCache to the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS evaluator.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
