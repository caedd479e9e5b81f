package nav

import "github.com/goliatone/go-navigator/pkg/activity"

// Back moves steps entries back (at least one). It delegates to the host when
// the session wrote enough host entries behind the current one, and otherwise
// moves the stack pointer and replaces the host entry. Back at the root entry
// is a no-op.
func (n *Navigator) Back(steps int) error {
	if !n.started {
		return n.fail("back", "", ErrRouterNotStarted)
	}
	n.redirects = 0
	return n.step(-max(steps, 1))
}

// Forward moves steps entries forward (at least one), bounded by the stack
// length.
func (n *Navigator) Forward(steps int) error {
	if !n.started {
		return n.fail("forward", "", ErrRouterNotStarted)
	}
	n.redirects = 0
	return n.step(max(steps, 1))
}

func (n *Navigator) step(delta int) error {
	taken := n.stack.move(delta)
	if taken == 0 {
		return nil
	}
	record, _ := n.stack.current()
	next := record.State.withSource(SourcePopstate)
	if next.Modal == "" {
		n.modalSequence = -1
	}

	native := (taken < 0 && n.hostDepth >= -taken) || (taken > 0 && n.hostTop-n.hostDepth >= taken)
	if native {
		n.hostDepth += taken
		return n.moveHost(taken, next)
	}
	n.hostTop = n.hostDepth
	n.writeHost(false, n.urlFor(next))
	return n.commit(next)
}

// CloseModalOption tunes CloseModal.
type CloseModalOption func(*closeModalOptions)

type closeModalOptions struct {
	sequence   bool
	cutHistory bool
}

// WithSequence closes the whole overlay chain opened over the current page
// instead of stepping back once.
func WithSequence() CloseModalOption {
	return func(o *closeModalOptions) {
		o.sequence = true
	}
}

// WithCutHistory makes a sequence close jump the host back over every entry
// the overlay chain wrote, in one move.
func WithCutHistory() CloseModalOption {
	return func(o *closeModalOptions) {
		o.cutHistory = true
	}
}

// CloseModal closes the open overlay. Without WithSequence it is Back(1).
// Closing when no overlay is open is a no-op.
func (n *Navigator) CloseModal(opts ...CloseModalOption) error {
	if !n.started {
		return n.fail("close_modal", "", ErrRouterNotStarted)
	}
	if n.state.Modal == "" {
		return nil
	}
	n.redirects = 0

	options := closeModalOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if !options.sequence {
		return n.step(-1)
	}

	target := n.stack.pointer
	for target > 0 {
		record, _ := n.stack.at(target)
		if record.State.Page != n.state.Page || record.State.Modal == "" {
			break
		}
		target--
	}
	record, _ := n.stack.at(target)
	next := record.State.withSource(SourcePopstate)
	consumed := n.stack.pointer - target
	n.stack.truncate(target)

	if options.cutHistory {
		delta := consumed
		if n.modalSequence >= 0 {
			delta = n.hostDepth - n.modalSequence
		}
		n.modalSequence = -1
		if delta > 0 && delta <= n.hostDepth {
			n.hostDepth -= delta
			return n.moveHost(-delta, next)
		}
	}
	n.modalSequence = -1
	n.hostTop = n.hostDepth
	n.writeHost(false, n.urlFor(next))
	return n.commit(next)
}

// onPositionChange reconciles a host move with the stack. Entries from
// another session, or pointing outside the stack, reset to the root entry and
// rewrite the host URL.
func (n *Navigator) onPositionChange(payload Payload, ok bool) {
	if !n.started {
		return
	}
	if n.moving && ok && payload.SessionID == n.stack.session {
		n.hostDepth = payload.Depth
		return
	}
	n.redirects = 0

	if !ok || payload.SessionID != n.stack.session || payload.Counter < 0 || payload.Counter >= n.stack.len() {
		n.logger.Info("host entry does not belong to this session, resetting to root",
			"session", payload.SessionID,
			"counter", payload.Counter,
			"has_payload", ok,
		)
		n.stack.pointer = 0
		n.hostDepth, n.hostTop = 0, 0
		n.modalSequence = -1
		root, _ := n.stack.current()
		n.emit(activity.BuildFallbackEvent, activity.NavigationEventInput{
			Source: string(SourcePopstate),
			To:     snapshotOf(root.State),
			From:   snapshotOf(n.state),
			Route:  root.State.Route(),
			Reason: "stale_session",
		})
		n.writeHost(false, n.urlFor(root.State))
		if err := n.commit(root.State.withSource(SourcePopstate)); err != nil {
			n.logger.Warn("root commit failed", "error", err)
		}
		return
	}

	record, _ := n.stack.at(payload.Counter)
	if payload.Counter == n.stack.pointer && record.State.Equal(n.state) {
		n.hostDepth = payload.Depth
		return
	}
	n.stack.pointer = payload.Counter
	n.hostDepth = payload.Depth
	if n.hostDepth > n.hostTop {
		n.hostTop = n.hostDepth
	}
	if record.State.Modal == "" {
		n.modalSequence = -1
	}
	if err := n.commit(record.State.withSource(SourcePopstate)); err != nil {
		n.logger.Warn("position change commit failed", "counter", payload.Counter, "error", err)
	}
}
