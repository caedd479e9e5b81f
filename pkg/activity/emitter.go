package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "navigation"

// Config controls emission defaults, typically loaded with the route table.
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty" toml:"channel,omitempty"`
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	compacted := compactHooks(hooks)
	return &Emitter{
		hooks:   compacted,
		enabled: cfg.Enabled && len(compacted) > 0,
		channel: channel,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Channel returns the default channel.
func (e *Emitter) Channel() string {
	if e == nil {
		return DefaultChannel
	}
	return e.channel
}

// Emit forwards the event to all hooks, applying the default channel when
// missing.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

func compactHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	out := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
