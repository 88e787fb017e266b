package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the relay's Prometheus collectors
type Metrics struct {
	RelayRequests  *prometheus.CounterVec
	RelayDuration  *prometheus.HistogramVec
	WebhooksTotal  *prometheus.CounterVec
	CustomerOrders *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RelayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooscale_relay",
			Name:      "requests_total",
			Help:      "Outbound calls to the Gooscale platform by operation and outcome.",
		}, []string{"op", "outcome"}),
		RelayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gooscale_relay",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound calls to the Gooscale platform.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		WebhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooscale_relay",
			Name:      "webhooks_received_total",
			Help:      "Inbound Shopify webhooks by topic and result.",
		}, []string{"topic", "result"}),
		CustomerOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooscale_relay",
			Name:      "customer_orders_total",
			Help:      "Customer order submissions by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.RelayRequests, m.RelayDuration, m.WebhooksTotal, m.CustomerOrders)
	return m
}

// NewNop returns collectors registered on a private registry, for tests and tools
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveRelay records one outbound call
func (m *Metrics) ObserveRelay(op string, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.RelayRequests.WithLabelValues(op, outcome).Inc()
	m.RelayDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// Webhook records one inbound webhook
func (m *Metrics) Webhook(topic string, result string) {
	if m == nil {
		return
	}
	m.WebhooksTotal.WithLabelValues(topic, result).Inc()
}

// CustomerOrder records one customer order submission
func (m *Metrics) CustomerOrder(result string) {
	if m == nil {
		return
	}
	m.CustomerOrders.WithLabelValues(result).Inc()
}
