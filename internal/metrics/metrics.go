package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the process counters. Revenue and purchase totals are
// derived from the purchase table on restart-sensitive reads; these counters
// are process-local observability only.
type Metrics struct {
	registry *prometheus.Registry

	ContentsPublished prometheus.Counter
	Purchases         prometheus.Counter
	RevenueUnits      prometheus.Counter
	FeedRenders       prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ContentsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channelbot_contents_published_total",
		Help: "Content items published.",
	})
	m.Purchases = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channelbot_purchases_total",
		Help: "Unlock grants recorded.",
	})
	m.RevenueUnits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channelbot_revenue_units_total",
		Help: "Currency-agnostic units collected.",
	})
	m.FeedRenders = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channelbot_feed_renders_total",
		Help: "Catalog feed renders served.",
	})

	m.registry.MustRegister(m.ContentsPublished, m.Purchases, m.RevenueUnits, m.FeedRenders)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
