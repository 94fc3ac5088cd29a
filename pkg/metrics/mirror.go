package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MirrorMetrics records cache reconciliation activity per resource.
type MirrorMetrics struct {
	refreshDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	staleDiscards   *prometheus.CounterVec
	mutationErrors  *prometheus.CounterVec
}

// NewMirrorMetrics registers the mirror metrics on the provided registerer.
func NewMirrorMetrics(reg prometheus.Registerer) *MirrorMetrics {
	if reg == nil {
		return &MirrorMetrics{}
	}
	refreshDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mirror_refresh_duration_seconds",
		Help:    "Duration of full collection refreshes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_refresh_total",
		Help: "Completed collection refreshes.",
	}, []string{"resource"})
	staleDiscards := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_stale_discard_total",
		Help: "Refresh results discarded because a newer refresh was issued.",
	}, []string{"resource"})
	mutationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_mutation_error_total",
		Help: "Mutations that failed and left the cache untouched.",
	}, []string{"resource"})
	reg.MustRegister(refreshDuration, refreshes, staleDiscards, mutationErrors)
	return &MirrorMetrics{
		refreshDuration: refreshDuration,
		refreshes:       refreshes,
		staleDiscards:   staleDiscards,
		mutationErrors:  mutationErrors,
	}
}

// ObserveRefresh records one completed refresh for the named resource.
func (m *MirrorMetrics) ObserveRefresh(resource string, duration time.Duration) {
	if m == nil || m.refreshes == nil {
		return
	}
	label := normalizeLabel(resource)
	m.refreshDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.refreshes.WithLabelValues(label).Inc()
}

// IncStaleDiscard increments the stale-result counter.
func (m *MirrorMetrics) IncStaleDiscard(resource string) {
	if m == nil || m.staleDiscards == nil {
		return
	}
	m.staleDiscards.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncMutationError increments the failed-mutation counter.
func (m *MirrorMetrics) IncMutationError(resource string) {
	if m == nil || m.mutationErrors == nil {
		return
	}
	m.mutationErrors.WithLabelValues(normalizeLabel(resource)).Inc()
}

func normalizeLabel(resource string) string {
	if resource == "" {
		return "unknown"
	}
	return resource
}
