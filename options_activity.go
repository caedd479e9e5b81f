package nav

import (
	"context"

	"github.com/goliatone/go-navigator/pkg/activity"
)

// WithActivityHooks attaches activity hooks. Events are emitted when
// Config.Activity.Enabled is set or when hooks are supplied through this
// option. Nil hooks are dropped.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = append(cfg.activityHooks, normalized...)
		if len(normalized) > 0 {
			cfg.Activity.Enabled = true
		}
	}
}

// WithIdentity tags activity events with the acting user.
func WithIdentity(identity Identity) Option {
	return func(cfg *config) {
		cfg.identity = identity
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (n *Navigator) ActivityHooks() activity.Hooks {
	if n == nil {
		return nil
	}
	return cloneActivityHooks(n.cfg.activityHooks)
}

func cloneActivityHooks(hooks []activity.ActivityHook) activity.Hooks {
	normalized := make(activity.Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			normalized = append(normalized, hook)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

func (n *Navigator) emit(build func(activity.NavigationEventInput) activity.Event, input activity.NavigationEventInput) {
	if !n.emitter.Enabled() {
		return
	}
	input.ActorID = n.cfg.identity.ActorID
	input.UserID = n.cfg.identity.UserID
	input.TenantID = n.cfg.identity.TenantID
	input.SessionID = n.stack.session
	input.Pointer = n.stack.pointer
	if err := n.emitter.Emit(context.Background(), build(input)); err != nil {
		n.logger.Warn("activity hook failed", "error", err)
	}
}

func snapshotOf(s State) activity.StateSnapshot {
	return activity.StateSnapshot{
		Page:   s.Page,
		Modal:  s.Modal,
		Params: s.Params.Clone(),
	}
}
