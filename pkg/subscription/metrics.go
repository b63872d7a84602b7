package subscription

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const maxLabelLen = 64

func sanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}

// Metrics holds Prometheus counters for reconciliation traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	webhookEvents *prometheus.CounterVec
	syncCalls     *prometheus.CounterVec
	storeWrites   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clientflow",
				Subsystem: "subscription",
				Name:      "webhook_events_total",
				Help:      "Webhook deliveries by provider event type and outcome",
			},
			[]string{"type", "outcome"},
		),
		syncCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clientflow",
				Subsystem: "subscription",
				Name:      "sync_total",
				Help:      "Sync-on-demand calls by resulting status or failure",
			},
			[]string{"outcome"},
		),
		storeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clientflow",
				Subsystem: "subscription",
				Name:      "store_writes_total",
				Help:      "Subscription record writes by resolution path",
			},
			[]string{"path"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.webhookEvents, m.syncCalls, m.storeWrites)
	}
	return m
}

func (m *Metrics) webhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(sanitizeLabel(eventType), sanitizeLabel(outcome)).Inc()
}

func (m *Metrics) sync(outcome string) {
	if m == nil {
		return
	}
	m.syncCalls.WithLabelValues(sanitizeLabel(outcome)).Inc()
}

func (m *Metrics) storeWrite(path string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(sanitizeLabel(path)).Inc()
}
