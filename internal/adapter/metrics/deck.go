package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/swipedeck/internal/domain"
)

// DeckMetrics holds Prometheus metrics for deck actions and gesture outcomes.
// A nil *DeckMetrics records nothing.
type DeckMetrics struct {
	Swipes        *prometheus.CounterVec
	Rewinds       *prometheus.CounterVec
	Boosts        *prometheus.CounterVec
	Gestures      *prometheus.CounterVec
	LockFallbacks prometheus.Counter
}

// NewDeckMetrics creates and registers deck metrics on the given registry.
func NewDeckMetrics(reg prometheus.Registerer) *DeckMetrics {
	m := &DeckMetrics{
		Swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "swipes_total",
			Help:      "Total number of committed swipes, by action.",
		}, []string{"action"}),
		Rewinds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "rewinds_total",
			Help:      "Total number of rewind requests, by result.",
		}, []string{"result"}),
		Boosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "boosts_total",
			Help:      "Total number of boost requests, by result.",
		}, []string{"result"}),
		Gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "gestures_total",
			Help:      "Total number of classified gestures, by intent.",
		}, []string{"intent"}),
		LockFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "lock_fallback_releases_total",
			Help:      "Total number of animation locks released by the timeout instead of a completion signal.",
		}),
	}

	reg.MustRegister(m.Swipes, m.Rewinds, m.Boosts, m.Gestures, m.LockFallbacks)
	return m
}

func (m *DeckMetrics) SwipeCommitted(action domain.Action) {
	if m == nil {
		return
	}
	m.Swipes.WithLabelValues(action.String()).Inc()
}

func (m *DeckMetrics) Rewind(result string) {
	if m == nil {
		return
	}
	m.Rewinds.WithLabelValues(result).Inc()
}

func (m *DeckMetrics) Boost(result string) {
	if m == nil {
		return
	}
	m.Boosts.WithLabelValues(result).Inc()
}

func (m *DeckMetrics) LockFallback() {
	if m == nil {
		return
	}
	m.LockFallbacks.Inc()
}

// GestureClassified counts terminal gesture outcomes. In-progress drags are ignored.
func (m *DeckMetrics) GestureClassified(intent domain.Intent) {
	if m == nil || intent == domain.IntentNone || intent == domain.IntentDragging {
		return
	}
	m.Gestures.WithLabelValues(intent.String()).Inc()
}
