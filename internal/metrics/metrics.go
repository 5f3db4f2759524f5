// Package metrics exposes the Prometheus counters and gauges the
// admin server publishes (SPEC_FULL.md §4.9 expansion). It is grounded
// on core/system_health_logging.go's HealthLogger: a struct bundling a
// private prometheus.Registry plus one field per metric, registered
// once in the constructor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every counter and gauge this facade publishes.
type Metrics struct {
	Registry *prometheus.Registry

	RPCCalls        *prometheus.CounterVec
	RPCRetries      prometheus.Counter
	RPCFailures     *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	TipHeight       prometheus.Gauge
	SubscriberCount *prometheus.GaugeVec
	SupervisorState prometheus.Gauge
	ZmqMessages     *prometheus.CounterVec
}

// New constructs and registers every metric against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RPCCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qtumnode_rpc_calls_total",
			Help: "Total JSON-RPC calls issued to backend daemons, by method.",
		}, []string{"method"}),
		RPCRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qtumnode_rpc_retries_total",
			Help: "Total times an RPC call was retried against a different backend.",
		}),
		RPCFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qtumnode_rpc_failures_total",
			Help: "Total RPC calls that failed against every backend in the pool.",
		}, []string{"method"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qtumnode_cache_hits_total",
			Help: "Total cache lookups satisfied without an RPC round trip, by cache.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qtumnode_cache_misses_total",
			Help: "Total cache lookups that required an RPC round trip, by cache.",
		}, []string{"cache"}),
		TipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qtumnode_tip_height",
			Help: "Most recently applied chain tip height.",
		}),
		SubscriberCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qtumnode_subscriber_count",
			Help: "Number of active subscribers, by topic.",
		}, []string{"topic"}),
		SupervisorState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qtumnode_supervisor_state",
			Help: "Current supervisor lifecycle state, as supervisor.State's integer value.",
		}),
		ZmqMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qtumnode_zmq_messages_total",
			Help: "Total ZMQ messages received, by topic.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.RPCCalls,
		m.RPCRetries,
		m.RPCFailures,
		m.CacheHits,
		m.CacheMisses,
		m.TipHeight,
		m.SubscriberCount,
		m.SupervisorState,
		m.ZmqMessages,
	)

	return m
}

// ObserveCache records a cache lookup outcome for the named cache.
func (m *Metrics) ObserveCache(cache string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(cache).Inc()
	} else {
		m.CacheMisses.WithLabelValues(cache).Inc()
	}
}

// ObserveRPC records one completed RPC call, and a failure if err is
// non-nil.
func (m *Metrics) ObserveRPC(method string, err error) {
	m.RPCCalls.WithLabelValues(method).Inc()
	if err != nil {
		m.RPCFailures.WithLabelValues(method).Inc()
	}
}
