// Package metrics exposes Prometheus counters for HTTP traffic and user activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	activity *prometheus.CounterVec
}

// NewCollector registers the collector's metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movies_http_requests_total",
			Help: "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "movies_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movies_activity_events_total",
			Help: "User activity events, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.activity,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordActivity(kind string) {
	c.activity.WithLabelValues(kind).Inc()
}

// Handler serves the Prometheus exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
