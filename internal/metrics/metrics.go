// Package metrics exposes prometheus collectors for context selection and embedding caches.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "workbot"

// Selection records how context selection calls were resolved. A nil *Selection is a no-op.
type Selection struct {
	selections        *prometheus.CounterVec
	selected          prometheus.Histogram
	duplicatesRemoved prometheus.Counter
	backfill          *prometheus.CounterVec
}

func NewSelection(reg prometheus.Registerer) *Selection {
	m := &Selection{
		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "context_selections_total",
				Help:      "Context selection calls by resolution path",
			},
			[]string{"path"}, // noop, disabled, fallback, semantic
		),
		selected: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "context_selected_messages",
				Help:      "Number of history messages returned per selection",
				Buckets:   []float64{0, 1, 2, 4, 6, 8, 10, 15, 20, 30, 50},
			},
		),
		duplicatesRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "context_duplicates_removed_total",
				Help:      "Messages removed by duplicate question collapsing",
			},
		),
		backfill: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "context_backfill_messages_total",
				Help:      "Messages processed by embedding backfill by outcome",
			},
			[]string{"outcome"}, // embedded, failed, skipped
		),
	}

	reg.MustRegister(m.selections, m.selected, m.duplicatesRemoved, m.backfill)
	return m
}

func (m *Selection) ObservePath(path string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(path).Inc()
}

func (m *Selection) ObserveSelected(n int) {
	if m == nil {
		return
	}
	m.selected.Observe(float64(n))
}

func (m *Selection) ObserveDuplicatesRemoved(n int) {
	if m == nil || n == 0 {
		return
	}
	m.duplicatesRemoved.Add(float64(n))
}

// ObserveBackfill counts messages by outcome. skipped counts messages left
// unattempted because the batch call failed.
func (m *Selection) ObserveBackfill(embedded, failed, skipped int) {
	if m == nil {
		return
	}
	m.backfill.WithLabelValues("embedded").Add(float64(embedded))
	m.backfill.WithLabelValues("failed").Add(float64(failed))
	m.backfill.WithLabelValues("skipped").Add(float64(skipped))
}

// Cache counts embedding cache lookups. A nil *Cache is a no-op.
type Cache struct {
	lookups *prometheus.CounterVec
	errors  *prometheus.CounterVec
}

func NewCache(reg prometheus.Registerer) *Cache {
	m := &Cache{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_cache_lookups_total",
				Help:      "Embedding cache lookups by backend and result",
			},
			[]string{"backend", "result"}, // result: hit, miss
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_cache_errors_total",
				Help:      "Embedding cache read/write errors by backend",
			},
			[]string{"backend", "op"},
		),
	}

	reg.MustRegister(m.lookups, m.errors)
	return m
}

func (m *Cache) Hit(backend string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(backend, "hit").Inc()
}

func (m *Cache) Miss(backend string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(backend, "miss").Inc()
}

func (m *Cache) Error(backend, op string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(backend, op).Inc()
}
