package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-navigator/tree"
)

// Route tree errors, re-exported so callers only import nav.
var (
	ErrRouteNotRegistered = tree.ErrRouteNotRegistered
	ErrParentNotFound     = tree.ErrParentNotFound
	ErrNodeNotFound       = tree.ErrNodeNotFound
	ErrDuplicateRoute     = tree.ErrDuplicateRoute
	ErrReservedParam      = tree.ErrReservedParam
	ErrInvalidParams      = tree.ErrInvalidParams
)

var (
	ErrNoRoutesConfigured   = errors.New("nav: no routes configured")
	ErrAlreadySubscribed    = errors.New("nav: subscriber already registered")
	ErrRouterNotStarted     = errors.New("nav: navigator not started")
	ErrRouterAlreadyStarted = errors.New("nav: navigator already started")
	ErrRedirectLimit        = errors.New("nav: redirect limit reached")
	ErrNoEvaluator          = errors.New("nav: guard evaluator not configured")
	ErrGuardResult          = errors.New("nav: guard must evaluate to a bool")
	ErrNilHost              = errors.New("nav: host is required")
	ErrInvalidConfig        = errors.New("nav: invalid config")
	ErrTreeExists           = errors.New("nav: route tree already exists")
	ErrTreeNotFound         = errors.New("nav: route tree not found")
	ErrTreeActive           = errors.New("nav: route tree is active")
)

// NavigationError annotates a failed navigator operation with the route it
// targeted.
type NavigationError struct {
	Op    string
	Route string
	Err   error
}

func (e *NavigationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Route == "" {
		return fmt.Sprintf("nav: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("nav: %s %q: %v", e.Op, e.Route, e.Err)
}

func (e *NavigationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func navigationError(op, route string, err error) error {
	if err == nil {
		return nil
	}
	var navErr *NavigationError
	if errors.As(err, &navErr) {
		return err
	}
	return &NavigationError{Op: op, Route: route, Err: err}
}

// GuardError captures guard evaluation metadata alongside the originating
// error.
type GuardError struct {
	Engine string
	Expr   string
	Route  string
	Err    error
}

func (e *GuardError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("nav: %s guard %s route=%s: %v", e.Engine, describeExpression(e.Expr), e.Route, e.Err)
}

func (e *GuardError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "nav:") {
		return err
	}
	return fmt.Errorf("nav: %s evaluator: %w", engine, err)
}

func wrapGuardError(engine, expr, route string, err error) error {
	if err == nil {
		return nil
	}
	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		if guardErr.Engine == "" {
			guardErr.Engine = engine
		}
		if guardErr.Expr == "" {
			guardErr.Expr = expr
		}
		if guardErr.Route == "" {
			guardErr.Route = route
		}
		return guardErr
	}
	return &GuardError{
		Engine: engine,
		Expr:   expr,
		Route:  route,
		Err:    err,
	}
}
