package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for availability queries
// and booking commits.
type SchedulingMetrics struct {
	slotQueriesTotal *prometheus.CounterVec
	commitsTotal     *prometheus.CounterVec
	commitLatency    prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glowdesk",
			Subsystem: "scheduling",
			Name:      "slot_queries_total",
			Help:      "Total availability computations",
		}, []string{"outcome"}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glowdesk",
			Subsystem: "scheduling",
			Name:      "commits_total",
			Help:      "Total booking commit attempts",
		}, []string{"operation", "outcome"}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "glowdesk",
			Subsystem: "scheduling",
			Name:      "commit_latency_seconds",
			Help:      "Latency of conflict-guarded commits",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotQueriesTotal, m.commitsTotal, m.commitLatency)
	return m
}

func (m *SchedulingMetrics) ObserveSlotQuery(outcome string) {
	if m == nil {
		return
	}
	m.slotQueriesTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveCommit(operation, outcome string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveCommitLatency(seconds float64) {
	if m == nil {
		return
	}
	m.commitLatency.Observe(seconds)
}
