package nav

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrFunctionRegistered indicates a second registration under one name.
	ErrFunctionRegistered = errors.New("nav: guard function already registered")
	// ErrFunctionNotFound indicates a guard called an unknown function.
	ErrFunctionNotFound = errors.New("nav: guard function not registered")
)

// Function is a custom function callable from guard expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores guard functions. Names are case-insensitive.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register stores fn under name.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("nav: guard function name must not be empty")
	case fn == nil:
		return fmt.Errorf("nav: guard function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("%w: %q", ErrFunctionRegistered, name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a copy that can be extended without touching r.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{functions: maps.Clone(r.functions)}
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.functions[strings.ToLower(name)]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return fn(args...)
}

// Names returns the registered names in sorted order. Engines bind functions
// in this order so compiled programs are stable.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

// WithFunctionRegistry exposes registry's functions to guard expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithGuardFunction registers fn under name for guard expressions.
// Registration errors are reported by New.
func WithGuardFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.errs = append(cfg.errs, err)
		}
	}
}
