// Package urlcodec converts navigation states to and from the query string
// form "?p=<page>&m=<modal>&<route>.<key>=<value>".
package urlcodec

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/goliatone/go-navigator/tree"
)

const (
	// PageKey is the reserved query key holding the page route.
	PageKey = "p"
	// ModalKey is the reserved query key holding the modal route.
	ModalKey = "m"
)

// ErrMissingPage indicates a location without a page key.
var ErrMissingPage = errors.New("urlcodec: location does not name a page")

// Routes is the subset of the route tree the codec needs.
type Routes interface {
	GetRouteNode(name string) (*tree.Node, error)
	ActiveNodes(name string) ([]*tree.Node, error)
}

// Query is a decoded location.
type Query struct {
	Page   string
	Modal  string
	Params map[string]map[string]string
}

// Codec encodes and decodes locations, applying per-route param codecs.
type Codec struct {
	routes Routes
	logger *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for codec diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a codec bound to routes. A nil routes value disables per-route
// codecs and scoping of unscoped keys.
func New(routes Routes, opts ...Option) *Codec {
	c := &Codec{
		routes: routes,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Encode serializes a state. Route slices are passed through the route's
// EncodeParams hook right before serialization. Custom encoders must not emit
// keys containing '.'.
func (c *Codec) Encode(page, modal string, params map[string]map[string]string) string {
	obj := make(map[string]any, len(params))
	for route, slice := range params {
		if len(slice) == 0 {
			continue
		}
		if node := c.node(route); node != nil && node.EncodeParams != nil {
			slice = node.EncodeParams(copySlice(slice))
		}
		obj[route] = copySlice(slice)
	}

	var b strings.Builder
	b.WriteString("?")
	b.WriteString(PageKey + "=" + url.QueryEscape(page))
	if modal != "" {
		b.WriteString("&" + ModalKey + "=" + url.QueryEscape(modal))
	}
	if rest := BuildQueryParams(obj, ""); rest != "" {
		b.WriteString("&" + rest)
	}
	return b.String()
}

// Decode parses a location (path, query or full URL) into a Query. Route
// slices are passed through the route's DecodeParams hook right after
// parsing. Unscoped keys are attributed to the deepest route of the modal or
// page chain that requires them, and to the page otherwise.
func (c *Codec) Decode(location string) (Query, error) {
	raw := GetQueryParams(location)
	page, _ := raw[PageKey].(string)
	modal, _ := raw[ModalKey].(string)
	if page == "" {
		return Query{}, fmt.Errorf("%w: %q", ErrMissingPage, location)
	}

	query := Query{
		Page:   page,
		Modal:  modal,
		Params: make(map[string]map[string]string),
	}
	for key, value := range raw {
		if key == PageKey || key == ModalKey {
			continue
		}
		switch v := value.(type) {
		case string:
			route := c.scopeFor(key, modal, page)
			set(query.Params, route, key, v)
		case map[string]any:
			for name, inner := range v {
				if s, ok := inner.(string); ok {
					set(query.Params, key, name, s)
				}
			}
		}
	}

	for route, slice := range query.Params {
		node := c.node(route)
		if node == nil || node.DecodeParams == nil {
			continue
		}
		decoded := node.DecodeParams(copySlice(slice))
		if len(decoded) == 0 {
			delete(query.Params, route)
			continue
		}
		query.Params[route] = copySlice(decoded)
	}
	return query, nil
}

func (c *Codec) scopeFor(key, modal, page string) string {
	if c.routes == nil {
		return page
	}
	for _, name := range []string{modal, page} {
		if name == "" {
			continue
		}
		chain, err := c.routes.ActiveNodes(name)
		if err != nil {
			continue
		}
		for i := len(chain) - 1; i >= 0; i-- {
			for _, required := range chain[i].RequiredParams {
				if required == key {
					return chain[i].Path
				}
			}
		}
	}
	return page
}

func (c *Codec) node(route string) *tree.Node {
	if c.routes == nil {
		return nil
	}
	node, err := c.routes.GetRouteNode(route)
	if err != nil {
		c.logger.Debug("params for unknown route", "route", route)
		return nil
	}
	return node
}

func set(params map[string]map[string]string, route, key, value string) {
	if value == "" {
		return
	}
	slice, ok := params[route]
	if !ok {
		slice = make(map[string]string)
		params[route] = slice
	}
	slice[key] = value
}

func copySlice(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
