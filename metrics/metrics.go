// Package metrics wires github.com/prometheus/client_golang/prometheus
// collectors for the monitor's dispatch loop: a counter of dispatched events
// per provider kind, a gauge of currently-managed providers, and a histogram
// of on_event handler latency. The reactor core itself stays metrics-agnostic
// (see SPEC_FULL.md §4.D); callers pass a *Collectors into the places that
// want instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors bundles the prometheus vectors a reactorcore process registers.
// The zero value is not usable; construct with New.
type Collectors struct {
	EventsDispatched *prometheus.CounterVec
	ManagedProviders prometheus.Gauge
	HandlerLatency   *prometheus.HistogramVec
}

// New builds an unregistered set of collectors. namespace/subsystem follow
// the usual prometheus naming convention (e.g. "reactorcore", "monitor").
func New(namespace, subsystem string) *Collectors {
	return &Collectors{
		EventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_dispatched_total",
			Help:      "Number of OnEvent dispatches, labeled by provider kind.",
		}, []string{"provider"}),
		ManagedProviders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "managed_providers",
			Help:      "Number of providers currently registered with the monitor.",
		}),
		HandlerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "on_event_duration_seconds",
			Help:      "Latency of a single provider OnEvent call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

// MustRegister registers every collector against reg, panicking on
// duplicate-registration errors (mirrors the teacher's fail-fast
// start-up registration pattern).
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.EventsDispatched, c.ManagedProviders, c.HandlerLatency)
}

// ObserveDispatch records one OnEvent call of the given provider kind taking
// dur, and increments the dispatch counter for that kind.
func (c *Collectors) ObserveDispatch(provider string, dur time.Duration) {
	if c == nil {
		return
	}
	c.EventsDispatched.WithLabelValues(provider).Inc()
	c.HandlerLatency.WithLabelValues(provider).Observe(dur.Seconds())
}

// SetManaged sets the managed-provider gauge to n.
func (c *Collectors) SetManaged(n int) {
	if c == nil {
		return
	}
	c.ManagedProviders.Set(float64(n))
}
