// Package promhook counts navigation activity in Prometheus metrics.
package promhook

import (
	"context"

	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes the metric names.
const DefaultNamespace = "navigator"

// Hook is an activity.ActivityHook that counts events by verb, route and
// source. Route cardinality is bounded by the route tree.
type Hook struct {
	events *prometheus.CounterVec
}

var _ activity.ActivityHook = (*Hook)(nil)

// New registers the counters on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer, namespace string) *Hook {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Hook{
		events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Navigation activity events by verb, route and source.",
		}, []string{"verb", "route", "source"}),
	}
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	h.events.WithLabelValues(normalized.Verb, normalized.Route, normalized.Source).Inc()
	return nil
}

// Events exposes the counter vector for collection and tests.
func (h *Hook) Events() *prometheus.CounterVec {
	return h.events
}
