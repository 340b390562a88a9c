package reward

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Grant sources recorded by Metrics.
const (
	SourceLogin   = "login"
	SourceCommand = "command"
)

// Metrics counts reward activity on a private registry so that several
// services in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	grants      *prometheus.CounterVec
	syncs       prometheus.Counter
	flushes     prometheus.Counter
	flushErrors prometheus.Counter
}

// NewMetrics creates the reward counters on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		grants: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "titanium_reward_grants_total",
			Help: "Rewards granted to players, partitioned by source.",
		}, []string{"source"}),
		syncs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "titanium_reward_syncs_total",
			Help: "Ledger snapshots broadcast to clients.",
		}),
		flushes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "titanium_reward_flushes_total",
			Help: "Ledgers written to the backend.",
		}),
		flushErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "titanium_reward_flush_errors_total",
			Help: "Ledger writes that failed.",
		}),
	}
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Grants returns the grant counter for source.
func (m *Metrics) Grants(source string) prometheus.Counter {
	return m.grants.WithLabelValues(source)
}

func (m *Metrics) Syncs() prometheus.Counter       { return m.syncs }
func (m *Metrics) Flushes() prometheus.Counter     { return m.flushes }
func (m *Metrics) FlushErrors() prometheus.Counter { return m.flushErrors }

func (m *Metrics) grant(source string, n int) {
	if m != nil && n > 0 {
		m.grants.WithLabelValues(source).Add(float64(n))
	}
}

func (m *Metrics) sync() {
	if m != nil {
		m.syncs.Inc()
	}
}

func (m *Metrics) flush(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.flushErrors.Inc()
		return
	}
	m.flushes.Inc()
}
