// Package metrics exposes Prometheus metrics for decode runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ligustah/glean/pkg/fragments"
)

// Namespace is the namespace all metrics are defined under.
const Namespace = "glean"

const subsystem = "decode"

// Metrics implements fragments.Observer on top of Prometheus collectors.
type Metrics struct {
	probes      *prometheus.CounterVec
	inFlight    prometheus.Gauge
	backfills   prometheus.Counter
	stalls      prometheus.Counter
	fragments   prometheus.Gauge
	maxIndex    prometheus.Gauge
	runDuration prometheus.Histogram
}

// New registers the decode metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "probes_total",
			Help: "Probes finished, by outcome.",
		}, []string{"outcome"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "probes_in_flight",
			Help: "Probes currently awaiting a response.",
		}),
		backfills: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "backfill_rounds_total",
			Help: "Backfill rounds launched.",
		}),
		stalls: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "quiet_periods_incomplete_total",
			Help: "Quiet periods that ended without a complete range.",
		}),
		fragments: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "fragments",
			Help: "Distinct fragment indices collected.",
		}),
		maxIndex: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name: "max_index",
			Help: "Highest fragment index seen.",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: subsystem,
			Name:    "run_duration_seconds",
			Help:    "Wall-clock duration of decode runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// ProbeStarted raises the in-flight gauge.
func (m *Metrics) ProbeStarted() {
	m.inFlight.Inc()
}

// ProbeDone lowers the in-flight gauge and counts the probe under its
// outcome label. Hits also bump the fragment gauge.
func (m *Metrics) ProbeDone(outcome fragments.Outcome) {
	m.inFlight.Dec()
	m.probes.WithLabelValues(outcome.String()).Inc()
	if outcome == fragments.OutcomeHit {
		m.fragments.Inc()
	}
}

// BackfillLaunched counts a backfill round. Batch size is not recorded.
func (m *Metrics) BackfillLaunched(int, int) {
	m.backfills.Inc()
}

// Stalled counts an incomplete quiet period and syncs the fragment and
// max index gauges to the store.
func (m *Metrics) Stalled(st fragments.Stats) {
	m.stalls.Inc()
	m.fragments.Set(float64(st.Fragments))
	m.maxIndex.Set(float64(st.MaxIndex))
}

// Finished records the final gauges and observes the run duration.
func (m *Metrics) Finished(st fragments.Stats, elapsed time.Duration) {
	m.fragments.Set(float64(st.Fragments))
	m.maxIndex.Set(float64(st.MaxIndex))
	m.runDuration.Observe(elapsed.Seconds())
}
