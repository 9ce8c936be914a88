package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the assistant flows.
type AssistantMetrics struct {
	topicsTotal    *prometheus.CounterVec
	outcomesTotal  *prometheus.CounterVec
	remindersTotal *prometheus.CounterVec
	messageLatency *prometheus.HistogramVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		topicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postop",
			Subsystem: "assistant",
			Name:      "topics_total",
			Help:      "Total messages routed per topic",
		}, []string{"topic"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postop",
			Subsystem: "assistant",
			Name:      "reconcile_outcomes_total",
			Help:      "Total schedule reconciliation outcomes",
		}, []string{"kind", "outcome"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postop",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Total reminder SMS dispatches",
		}, []string{"kind", "status"}),
		messageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "postop",
			Subsystem: "assistant",
			Name:      "message_latency_seconds",
			Help:      "Latency of full message handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.topicsTotal, m.outcomesTotal, m.remindersTotal, m.messageLatency)
	return m
}

func (m *AssistantMetrics) ObserveTopic(topic string) {
	if m == nil {
		return
	}
	m.topicsTotal.WithLabelValues(topic).Inc()
}

func (m *AssistantMetrics) ObserveOutcome(kind, outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *AssistantMetrics) ObserveReminder(kind, status string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(kind, status).Inc()
}

func (m *AssistantMetrics) ObserveMessageLatency(topic string, seconds float64) {
	if m == nil {
		return
	}
	m.messageLatency.WithLabelValues(topic).Observe(seconds)
}
