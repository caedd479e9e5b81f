package nav

import "time"

// GuardLogEvent describes one guard evaluation.
type GuardLogEvent struct {
	Engine   string
	Expr     string
	Route    string
	Allowed  bool
	Duration time.Duration
	Err      error
}

// GuardLogger records guard evaluations.
type GuardLogger interface {
	LogGuard(GuardLogEvent)
}

// GuardLoggerFunc adapts a function to GuardLogger.
type GuardLoggerFunc func(GuardLogEvent)

// LogGuard implements GuardLogger.
func (f GuardLoggerFunc) LogGuard(event GuardLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopGuardLogger struct{}

func (noopGuardLogger) LogGuard(GuardLogEvent) {}

// WithGuardLogger attaches a guard logger. A nil logger disables guard
// logging.
func WithGuardLogger(logger GuardLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.guardLogger = noopGuardLogger{}
			return
		}
		cfg.guardLogger = logger
	}
}

func (n *Navigator) guardLogger() GuardLogger {
	if n.cfg.guardLogger != nil {
		return n.cfg.guardLogger
	}
	return noopGuardLogger{}
}
