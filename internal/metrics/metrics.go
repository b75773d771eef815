// Package metrics exposes prometheus instrumentation for the aggregation and insight layers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is implemented by the prometheus provider and by the no-op used when metrics are disabled.
type Recorder interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncGenerations(topic, outcome string)
	IncQueryErrors(metric, kind string)
	ObserveQueryDuration(metric string, duration time.Duration)
	Handler() http.Handler
}

// Generation outcomes.
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
	OutcomeCoalesced = "coalesced"
)

type provider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	generations     *prometheus.CounterVec
	queryErrors     *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
}

// New returns a prometheus-backed Recorder on its own registry, or a no-op when disabled.
func New(enabled bool) Recorder {
	if !enabled {
		return Noop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &provider{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "health_insights_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "health_insights_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "health_insights_cache_hits_total",
			Help: "Insight cache lookups served from a valid entry",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "health_insights_cache_misses_total",
			Help: "Insight cache lookups that required generation",
		}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "health_insights_generations_total",
			Help: "Insight generation attempts by topic and outcome",
		}, []string{"topic", "outcome"}),
		queryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "health_insights_query_errors_total",
			Help: "Failed health data source queries by metric and error kind",
		}, []string{"metric", "kind"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "health_insights_query_duration_seconds",
			Help:    "Health data source query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"metric"}),
	}
}

func (p *provider) IncRequestsTotal(route string, status int) {
	p.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
}

func (p *provider) ObserveRequestDuration(route string, duration time.Duration) {
	p.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (p *provider) IncCacheHits() {
	p.cacheHits.Inc()
}

func (p *provider) IncCacheMisses() {
	p.cacheMisses.Inc()
}

func (p *provider) IncGenerations(topic, outcome string) {
	p.generations.WithLabelValues(topic, outcome).Inc()
}

func (p *provider) IncQueryErrors(metric, kind string) {
	p.queryErrors.WithLabelValues(metric, kind).Inc()
}

func (p *provider) ObserveQueryDuration(metric string, duration time.Duration) {
	p.queryDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

func (p *provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func statusBucket(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}

type noop struct{}

// Noop returns a Recorder that discards everything.
func Noop() Recorder { return noop{} }

func (noop) IncRequestsTotal(string, int)                 {}
func (noop) ObserveRequestDuration(string, time.Duration) {}
func (noop) IncCacheHits()                                {}
func (noop) IncCacheMisses()                              {}
func (noop) IncGenerations(string, string)                {}
func (noop) IncQueryErrors(string, string)                {}
func (noop) ObserveQueryDuration(string, time.Duration)   {}
func (noop) Handler() http.Handler                        { return http.NotFoundHandler() }
