package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for deck sessions.
type SessionMetrics struct {
	ActiveSessions prometheus.Gauge
	SessionsTotal  *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active_sessions",
			Help:      "Number of live deck sessions.",
		}),
		SessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Total number of session start attempts, by result.",
		}, []string{"result"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_dropped_total",
			Help:      "Total number of client events dropped, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveSessions, m.SessionsTotal, m.EventsDropped)
	return m
}
