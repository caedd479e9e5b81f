// Package nav is a navigation state machine for applications built from
// nested pages and overlay modals. It resolves route names and params into a
// canonical State, keeps an internal history stack consistent with the host's
// session history and URL, and publishes every committed transition to
// subscribers.
//
// A Navigator is not safe for concurrent use. Drive it from the same event
// loop that delivers host notifications.
package nav

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goliatone/go-navigator/layering"
	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/goliatone/go-navigator/tree"
	"github.com/goliatone/go-navigator/urlcodec"
)

// Navigator owns the route tree, the current and previous state, the history
// stack and the subscriber list.
type Navigator struct {
	cfg     config
	host    Host
	tree    *tree.Tree
	codec   *urlcodec.Codec
	logger  *slog.Logger
	emitter *activity.Emitter

	trees      map[string]*tree.Tree
	activeTree string

	started bool
	state   State
	prev    State
	stack   historyStack

	// hostDepth counts the host entries written by this session behind the
	// current one; hostTop is the deepest such entry still reachable forward.
	hostDepth int
	hostTop   int
	// modalSequence is the hostDepth recorded when the first overlay of a
	// chain opened, or -1.
	modalSequence int
	// moving is set while the host follows a move the navigator started.
	moving bool

	subscribers []subscription
	nextSubID   int
	handlers    map[string][]handlerEntry
	nextHandler int

	commits   int
	redirects int
	detach    []func()
}

// New builds a navigator over host. Route definitions and settings come from
// opts; the tree is validated before New returns.
func New(host Host, opts ...Option) (*Navigator, error) {
	if host == nil {
		return nil, navigationError("new", "", ErrNilHost)
	}
	cfg := applyOptions(opts)

	t, err := tree.Build(cfg.routes, tree.WithLogger(cfg.logger))
	if err := errors.Join(append(cfg.errs, cfg.Config.Validate(), err)...); err != nil {
		cfg.logger.Error("navigator configuration rejected", "error", err)
		return nil, navigationError("new", "", err)
	}

	if cfg.evaluator == nil && cfg.GuardEngine != "" {
		evaluator, err := NewEvaluatorFor(cfg.GuardEngine, cfg.programCache, cfg.functions)
		if err != nil {
			cfg.logger.Error("guard engine unavailable", "engine", cfg.GuardEngine, "error", err)
			return nil, navigationError("new", "", err)
		}
		cfg.evaluator = evaluator
	}

	return &Navigator{
		cfg:           cfg,
		host:          host,
		tree:          t,
		codec:         urlcodec.New(t, urlcodec.WithLogger(cfg.logger)),
		logger:        cfg.logger,
		trees:         map[string]*tree.Tree{DefaultTree: t},
		activeTree:    DefaultTree,
		emitter:       activity.NewEmitter(cfg.activityHooks, cfg.Activity),
		modalSequence: -1,
		handlers:      make(map[string][]handlerEntry),
	}, nil
}

// StartOption tunes Start.
type StartOption func(*startOptions)

type startOptions struct {
	route  string
	params RouteParams
}

// WithStartRoute sets the route Start opens when the host location carries no
// state. An unresolvable start route falls back to the default route.
func WithStartRoute(route string, params RouteParams) StartOption {
	return func(o *startOptions) {
		o.route = route
		o.params = params
	}
}

// Start reads the initial state from the host location, seeds the history
// stack and subscribes to host notifications. Deep links get their ancestor
// entries synthesized so that Back walks up the tree before leaving the app.
// Without location state Start opens the start route, then the default route.
func (n *Navigator) Start(opts ...StartOption) error {
	if n.started {
		return n.fail("start", "", ErrRouterAlreadyStarted)
	}
	if n.tree.Len() == 0 {
		return n.fail("start", "", ErrNoRoutesConfigured)
	}
	n.redirects = 0

	options := startOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if !n.restoreSession() {
		n.bootstrap(options)
	}

	n.detach = append(n.detach, n.host.SubscribeToPositionChange(n.onPositionChange))
	interceptor := n.cfg.linkInterceptor
	if interceptor == nil {
		interceptor, _ = n.host.(LinkInterceptor)
	}
	if interceptor != nil {
		n.detach = append(n.detach, interceptor.SubscribeToLinkActivation(n.ResolveLink, n.dispatchLink))
	}
	n.started = true

	record, _ := n.stack.current()
	return n.commit(record.State)
}

// Stop detaches from the host. Subscribers and handlers stay registered and
// the navigator can be started again.
func (n *Navigator) Stop() error {
	if !n.started {
		return n.fail("stop", "", ErrRouterNotStarted)
	}
	for _, detach := range n.detach {
		if detach != nil {
			detach()
		}
	}
	n.detach = nil
	n.started = false
	return nil
}

// bootstrap seeds a fresh session from the host location.
func (n *Navigator) bootstrap(options startOptions) {
	n.stack.reset(n.cfg.sessionIDs())
	n.modalSequence = -1

	initial, ok := n.locationState()
	if !ok && options.route != "" {
		initial, ok = n.startState(options.route, options.params)
	}
	if !ok {
		initial = n.defaultState()
	}

	for _, entry := range n.ancestry(initial) {
		if last, ok := n.stack.current(); ok && last.State.Equal(entry) {
			continue
		}
		n.stack.push(entry)
	}

	if last, ok := n.stack.current(); ok && last.State.Equal(initial) {
		n.stack.replace(initial)
		n.hostDepth, n.hostTop = 0, 0
		n.writeHost(false, n.urlFor(initial))
		return
	}

	n.stack.push(initial)
	if n.stack.pointer == 0 {
		n.hostDepth, n.hostTop = 0, 0
		n.writeHost(false, n.urlFor(initial))
		return
	}
	below, _ := n.stack.at(n.stack.pointer - 1)
	n.host.ReplaceState(n.payload(below, 0), n.title(below.State), n.urlFor(below.State))
	n.hostDepth, n.hostTop = 1, 1
	n.writeHost(true, n.urlFor(initial))
}

// locationState decodes the host location. ok is false when the location
// names no registered page or modal.
func (n *Navigator) locationState() (State, bool) {
	location := n.host.Location()
	query, err := n.codec.Decode(urlcodec.ExtractQuery(location, n.cfg.UseHash))
	if err != nil {
		n.logger.Info("location carries no state, using the default route", "location", location, "error", err)
		return State{}, false
	}
	page, err := n.tree.GetRouteNode(query.Page)
	if err != nil {
		n.logger.Warn("location names an unknown page, using the default route", "page", query.Page, "error", err)
		return State{}, false
	}
	state := State{Page: page.Path, Params: query.Params, Meta: Meta{Source: SourceURL}}
	if query.Modal != "" {
		modal, err := n.tree.GetRouteNode(query.Modal)
		if err != nil {
			n.logger.Warn("location names an unknown modal, dropping it", "modal", query.Modal, "error", err)
			delete(state.Params, query.Modal)
		} else {
			state.Modal = modal.Path
		}
	}
	return state.withSource(SourceURL), true
}

// startState resolves the start route from an empty state.
func (n *Navigator) startState(route string, params RouteParams) (State, bool) {
	res, err := n.makeState(route, params, State{})
	if err != nil {
		n.logger.Warn("start route not resolvable, using the default route", "route", route, "error", err)
		return State{}, false
	}
	return res.State.withSource(SourceGo), true
}

// defaultState is the state of the default route. The host URL is rewritten
// to it when Start falls back.
func (n *Navigator) defaultState() State {
	route := n.defaultRoute()
	n.emit(activity.BuildFallbackEvent, activity.NavigationEventInput{
		Source: string(SourceDefault),
		Route:  route,
		Reason: "location",
	})
	return State{Page: route, Meta: Meta{Source: SourceDefault}}
}

func (n *Navigator) defaultRoute() string {
	if n.cfg.DefaultRoute != "" {
		if node, err := n.tree.GetRouteNode(n.cfg.DefaultRoute); err == nil {
			return node.Path
		}
		n.logger.Warn("default route is not registered", "route", n.cfg.DefaultRoute)
	}
	if first := n.tree.First(); first != nil {
		return first.Path
	}
	return ""
}

func (n *Navigator) rootRoute() string {
	if n.cfg.RootRoute != "" {
		if node, err := n.tree.GetRouteNode(n.cfg.RootRoute); err == nil {
			return node.Path
		}
		n.logger.Warn("root route is not registered", "route", n.cfg.RootRoute)
	}
	return n.defaultRoute()
}

// ancestry lists the entries synthesized below a deep link: the root route,
// the ancestors of the page and, under an overlay, the bare page.
func (n *Navigator) ancestry(initial State) []State {
	var entries []State
	root := n.rootRoute()
	if root != "" && root != initial.Page {
		entries = append(entries, State{Page: root, Meta: Meta{Source: SourceGo}})
	}
	chain, err := n.tree.ActiveNodes(initial.Page)
	if err != nil {
		return entries
	}
	for i, node := range chain {
		if node.Path == initial.Page {
			if initial.Modal != "" {
				params := initial.Params.Clone()
				delete(params, initial.Modal)
				entries = append(entries, State{Page: node.Path, Params: params, Meta: Meta{Source: SourceGo}})
			}
			break
		}
		picks := make([]layering.Params, 0, i+1)
		for _, ancestor := range chain[:i+1] {
			picks = append(picks, layering.Pick(initial.Params, ancestor.Path, ancestor.RequiredParams))
		}
		entries = append(entries, State{Page: node.Path, Params: layering.Merge(picks...), Meta: Meta{Source: SourceGo}}.Clone())
	}
	return entries
}

// GoOption tunes a single navigation.
type GoOption func(*goOptions)

type goOptions struct {
	replace  bool
	redirect bool
}

// WithReplace overwrites the current history entry instead of pushing.
func WithReplace() GoOption {
	return func(o *goOptions) {
		o.replace = true
	}
}

// Go navigates to route with params. Navigating to the current state
// re-broadcasts it; navigating to the entry right below the current one pops
// back to it. Unknown routes leave the state untouched.
func (n *Navigator) Go(route string, params RouteParams, opts ...GoOption) error {
	if !n.started {
		return n.fail("go", route, ErrRouterNotStarted)
	}
	n.redirects = 0
	return n.navigate(route, params, opts...)
}

func (n *Navigator) navigate(route string, params RouteParams, opts ...GoOption) error {
	options := goOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	res, err := n.makeState(route, params, n.state)
	if err != nil {
		return n.fail("go", route, err)
	}
	next := res.State.withSource(SourceGo)

	if next.Equal(n.state) {
		n.broadcast()
		return nil
	}

	if !options.replace || options.redirect {
		if below, ok := n.stack.at(n.stack.pointer - 1); ok && below.State.Equal(next) {
			return n.popTo(next)
		}
	}

	if next.Modal == "" {
		n.modalSequence = -1
	} else if n.state.Modal == "" {
		n.modalSequence = n.hostDepth
	}

	url := n.urlFor(next)
	if !res.Node.UpdateURL {
		url = n.host.Location()
	}
	if options.replace {
		n.stack.replace(next)
		n.writeHost(false, url)
	} else {
		n.stack.push(next)
		n.hostDepth++
		n.hostTop = n.hostDepth
		n.writeHost(true, url)
	}
	return n.commit(next)
}

// popTo handles a navigation to the entry right below the current one.
func (n *Navigator) popTo(next State) error {
	n.stack.pop()
	if n.state.Modal != "" && next.Modal == "" {
		n.modalSequence = -1
	}
	if n.hostDepth >= 1 {
		n.hostDepth--
		return n.moveHost(-1, next)
	}
	n.hostTop = n.hostDepth
	n.writeHost(false, n.urlFor(next))
	return n.commit(next)
}

// moveHost moves the host by delta and commits next. A position change
// delivered during the move only records the host depth.
func (n *Navigator) moveHost(delta int, next State) error {
	n.moving = true
	n.host.Go(delta)
	n.moving = false
	return n.commit(next)
}

// commit makes next the current state, runs the guard and lifecycle handlers
// of the active route and broadcasts unless a redirect took over. Inside a
// redirect chain the previous state stays the one the chain started from.
func (n *Navigator) commit(next State) error {
	if n.redirects == 0 {
		n.prev = n.state
	}
	n.state = next.Clone()
	n.commits++

	node, err := n.tree.GetRouteNode(n.state.Route())
	if err != nil {
		n.logger.Error("committed state names an unknown route", "route", n.state.Route(), "error", err)
	} else {
		if allowed, err := n.checkGuard(node, n.state, n.prev); !allowed {
			target := node.Redirect
			if target == "" {
				target = n.defaultRoute()
			}
			n.logger.Info("route guard rejected activation", "route", node.Path, "redirect", target, "error", err)
			n.emit(activity.BuildGuardRejectedEvent, activity.NavigationEventInput{
				Source: string(n.state.Meta.Source),
				To:     snapshotOf(n.state),
				From:   snapshotOf(n.prev),
				Route:  node.Path,
				Reason: guardReason(err),
			})
			return n.redirect(target, nil, "guard")
		}
		if redirect, ok := n.runHandlers(node.Path); ok {
			return n.redirect(redirect.Name, redirect.Params, "handler")
		}
	}

	n.emit(activity.BuildCommittedEvent, activity.NavigationEventInput{
		Source: string(n.state.Meta.Source),
		To:     snapshotOf(n.state),
		From:   snapshotOf(n.prev),
		Route:  n.state.Route(),
	})
	n.persist()
	n.broadcast()
	return nil
}

// redirect replaces the just committed state, or pops back when the target is
// the entry right below it. Chains longer than MaxRedirects stop on the last
// committed state.
func (n *Navigator) redirect(route string, params RouteParams, reason string) error {
	if n.redirects >= n.cfg.MaxRedirects {
		n.redirects = 0
		n.broadcast()
		return n.fail("redirect", route, ErrRedirectLimit)
	}
	n.redirects++
	n.emit(activity.BuildRedirectedEvent, activity.NavigationEventInput{
		Source: string(n.state.Meta.Source),
		To:     snapshotOf(n.state),
		From:   snapshotOf(n.prev),
		Route:  route,
		Reason: reason,
	})
	return n.navigate(route, params, func(o *goOptions) {
		o.replace = true
		o.redirect = true
	})
}

func guardReason(err error) string {
	if err != nil {
		return err.Error()
	}
	return "rejected"
}

func (n *Navigator) persist() {
	if n.cfg.persister == nil {
		return
	}
	if err := n.cfg.persister.SaveHistory(context.Background(), n.stack.snapshot(n.modalSequence)); err != nil {
		n.logger.Warn("history snapshot not saved", "session", n.stack.session, "error", err)
	}
}

// restoreSession reloads a persisted stack for the session named by the host's
// current entry.
func (n *Navigator) restoreSession() bool {
	if !n.cfg.restore || n.cfg.persister == nil {
		return false
	}
	payload, ok := n.host.CurrentPayload()
	if !ok || payload.SessionID == "" {
		return false
	}
	snapshot, found, err := n.cfg.persister.LoadHistory(context.Background(), payload.SessionID)
	if err != nil {
		n.logger.Warn("history snapshot not loaded", "session", payload.SessionID, "error", err)
		return false
	}
	if !found || !snapshot.Valid() || payload.Counter < 0 || payload.Counter >= len(snapshot.Records) {
		return false
	}
	n.stack.restore(snapshot)
	n.stack.pointer = payload.Counter
	n.modalSequence = snapshot.ModalSequence
	n.hostDepth = payload.Depth
	n.hostTop = payload.Depth
	n.logger.Info("history restored", "session", snapshot.SessionID, "records", len(snapshot.Records), "pointer", n.stack.pointer)
	return true
}

// writeHost pushes or replaces the host entry for the current record.
func (n *Navigator) writeHost(push bool, url string) {
	record, _ := n.stack.current()
	payload := n.payload(record, n.hostDepth)
	if push {
		n.host.PushState(payload, n.title(record.State), url)
		return
	}
	n.host.ReplaceState(payload, n.title(record.State), url)
}

func (n *Navigator) payload(record HistoryRecord, depth int) Payload {
	return Payload{
		Counter:   record.Counter,
		Depth:     depth,
		SessionID: record.SessionID,
		Page:      record.State.Page,
		Modal:     record.State.Modal,
		Params:    record.State.Params.Clone(),
	}
}

func (n *Navigator) title(state State) string {
	if node, err := n.tree.GetRouteNode(state.Route()); err == nil && node.Title != "" {
		return node.Title
	}
	return n.cfg.Title
}

func (n *Navigator) urlFor(state State) string {
	return urlcodec.Join(n.cfg.Base, n.codec.Encode(state.Page, state.Modal, state.Params), n.cfg.UseHash)
}

// fail logs err and returns it wrapped for op.
func (n *Navigator) fail(op, route string, err error) error {
	wrapped := navigationError(op, route, err)
	n.logger.Error("navigation failed", "op", op, "route", route, "error", err)
	return wrapped
}
