package nav

import (
	"log/slog"
	"maps"

	"github.com/goliatone/go-navigator/layering"
	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/goliatone/go-navigator/tree"
	"github.com/google/uuid"
)

// DefaultMaxRedirects caps redirect chains started from lifecycle handlers
// and guards.
const DefaultMaxRedirects = 8

// Config holds the declarative navigator settings. It can be decoded from a
// route table file.
type Config struct {
	// DefaultRoute is used when the location names no registered page.
	// Empty selects the first top-level route.
	DefaultRoute string `json:"defaultRoute,omitempty" yaml:"defaultRoute,omitempty" toml:"defaultRoute,omitempty" validate:"omitempty,routename"`
	// RootRoute is the bottom entry synthesized under deep links. Empty
	// selects the default route.
	RootRoute string `json:"rootRoute,omitempty" yaml:"rootRoute,omitempty" toml:"rootRoute,omitempty" validate:"omitempty,routename"`
	// Base is the path prefix of generated URLs.
	Base string `json:"base,omitempty" yaml:"base,omitempty" toml:"base,omitempty" validate:"omitempty,excludesall=?#"`
	// UseHash keeps the query in the URL fragment.
	UseHash      bool   `json:"useHash,omitempty" yaml:"useHash,omitempty" toml:"useHash,omitempty"`
	MaxRedirects int    `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty" toml:"maxRedirects,omitempty" validate:"gte=0,lte=64"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" validate:"max=256"`
	// GuardEngine selects the guard evaluator: expr (default), cel or js.
	GuardEngine string          `json:"guardEngine,omitempty" yaml:"guardEngine,omitempty" toml:"guardEngine,omitempty" validate:"omitempty,oneof=expr cel js"`
	Activity    activity.Config `json:"activity" yaml:"activity" toml:"activity"`
}

// Identity tags activity events with the acting user.
type Identity struct {
	ActorID  string
	UserID   string
	TenantID string
}

// Option configures a Navigator.
type Option func(*config)

type config struct {
	Config

	logger          *slog.Logger
	routes          []tree.Route
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	guardLogger     GuardLogger
	guardArgs       map[string]any
	activityHooks   activity.Hooks
	identity        Identity
	persister       HistoryPersister
	restore         bool
	linkInterceptor LinkInterceptor
	sessionIDs      func() string
	errs            []error
}

func applyOptions(opts []Option) config {
	cfg := config{
		logger:     slog.New(slog.DiscardHandler),
		sessionIDs: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	return cfg
}

// WithConfig lays cfg over the settings applied so far. Non-zero fields of
// cfg win.
func WithConfig(cfg Config) Option {
	return func(c *config) {
		c.Config = layering.MergeLayers(cfg, c.Config)
	}
}

// WithDefaultRoute sets the fallback route.
func WithDefaultRoute(name string) Option {
	return func(cfg *config) {
		cfg.DefaultRoute = name
	}
}

// WithRootRoute sets the route synthesized at the bottom of deep links.
func WithRootRoute(name string) Option {
	return func(cfg *config) {
		cfg.RootRoute = name
	}
}

// WithBase sets the path prefix of generated URLs.
func WithBase(base string) Option {
	return func(cfg *config) {
		cfg.Base = base
	}
}

// WithHashMode keeps the query in the URL fragment.
func WithHashMode(enabled bool) Option {
	return func(cfg *config) {
		cfg.UseHash = enabled
	}
}

// WithMaxRedirects caps redirect chains. Values below one restore the
// default.
func WithMaxRedirects(limit int) Option {
	return func(cfg *config) {
		cfg.MaxRedirects = limit
	}
}

// WithTitle sets the title passed to the host for entries whose route has
// no title of its own.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.Title = title
	}
}

// WithLogger routes navigator, tree and codec diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRoutes appends route definitions to the route table.
func WithRoutes(routes ...tree.Route) Option {
	return func(cfg *config) {
		cfg.routes = append(cfg.routes, routes...)
	}
}

// WithEvaluator sets the guard evaluator, overriding Config.GuardEngine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithGuardArgs exposes args to guard expressions as the args variable.
func WithGuardArgs(args map[string]any) Option {
	return func(cfg *config) {
		cfg.guardArgs = maps.Clone(args)
	}
}

// WithHistoryPersister saves the history stack after every commit.
func WithHistoryPersister(persister HistoryPersister) Option {
	return func(cfg *config) {
		cfg.persister = persister
	}
}

// WithSessionRestore makes Start reload the persisted stack of the session
// named in the host's current entry. Requires WithHistoryPersister.
func WithSessionRestore(enabled bool) Option {
	return func(cfg *config) {
		cfg.restore = enabled
	}
}

// WithLinkInterceptor captures link activation through interceptor. Hosts
// implementing LinkInterceptor are used automatically.
func WithLinkInterceptor(interceptor LinkInterceptor) Option {
	return func(cfg *config) {
		cfg.linkInterceptor = interceptor
	}
}

// WithSessionIDGenerator replaces the uuid based browser session ids.
func WithSessionIDGenerator(fn func() string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.sessionIDs = fn
		}
	}
}
