// Package metrics provides the request metrics sink injected into handlers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Autoschedule outcomes
const (
	OutcomeScheduled = "scheduled"
	OutcomeNoSlot    = "no_slot"
	OutcomeError     = "error"
)

// Sink receives service metrics
type Sink interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	ObserveOracleCall(outcome string)
	ObserveAutoschedule(outcome string)
}

// Nop discards everything
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) ObserveOracleCall(string)                           {}
func (Nop) ObserveAutoschedule(string)                         {}

// Prometheus is a Sink backed by its own registry
type Prometheus struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	oracleCalls  *prometheus.CounterVec
	autoschedule *prometheus.CounterVec
}

// NewPrometheus registers the collectors on a fresh registry
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoschedule_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autoschedule_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoschedule_travel_time_queries_total",
			Help: "Travel-time oracle queries by outcome.",
		}, []string{"outcome"}),
		autoschedule: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoschedule_results_total",
			Help: "Autoschedule calls by outcome.",
		}, []string{"outcome"}),
	}
	p.registry.MustRegister(
		p.requests, p.duration, p.oracleCalls, p.autoschedule,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveOracleCall(outcome string) {
	p.oracleCalls.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ObserveAutoschedule(outcome string) {
	p.autoschedule.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Middleware reports every request to sink, keyed by the matched route pattern
func Middleware(sink Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		sink.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
