// Package prom exports cache and ring buffer signals as Prometheus metrics.
package prom

import (
	"github.com/IvanBrykalov/linkedcache/cache"
	"github.com/IvanBrykalov/linkedcache/ring"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe,
// so one Adapter may be shared by every shard of a cache.Sharded.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  *prometheus.CounterVec
	entries prometheus.Gauge
}

// New constructs a cache metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter labelled with r.String().
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Entries adds delta to the resident entries gauge.
func (a *Adapter) Entries(delta int) { a.entries.Add(float64(delta)) }

// RingAdapter implements ring.Metrics.
type RingAdapter struct {
	appends    prometheus.Counter
	overwrites prometheus.Counter
}

// NewRing constructs a ring buffer metrics adapter; arguments as for New.
func NewRing(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *RingAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &RingAdapter{
		appends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "appends_total",
			Help:        "Items appended to the ring buffer",
			ConstLabels: constLabels,
		}),
		overwrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "overwrites_total",
			Help:        "Appends that replaced the oldest item",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.appends, a.overwrites)
	return a
}

// Append increments the append counter.
func (a *RingAdapter) Append() { a.appends.Inc() }

// Overwrite increments the overwrite counter.
func (a *RingAdapter) Overwrite() { a.overwrites.Inc() }

// Compile-time checks.
var (
	_ cache.Metrics = (*Adapter)(nil)
	_ ring.Metrics  = (*RingAdapter)(nil)
)
