package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expensedash"

var collectorsList = []prometheus.Collector{
	RequestCount,
	RequestDuration,
	BackendRequests,
	BackendDuration,
	Notifications,
	RateLimited,
	SuspiciousRequests,
}

// RequestCount counts inbound HTTP requests by status code, method and route.
var RequestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "How many HTTP requests processed, partitioned by status code, method and route.",
	},
	[]string{"code", "method", "route"},
)

var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "The HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// BackendRequests counts calls to the resource backend.
var BackendRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Calls to the resource backend, partitioned by resource, operation and outcome.",
	},
	[]string{"resource", "operation", "outcome"},
)

var BackendDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of calls to the resource backend in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "operation"},
)

// Notifications counts mutation events handed to the message broker.
var Notifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_events_total",
		Help:      "Mutation events published to the broker, partitioned by outcome.",
	},
	[]string{"outcome"},
)

// RateLimited counts requests rejected by the per-client rate limiter.
var RateLimited = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected because the client exceeded its rate limit.",
	},
)

var SuspiciousRequests = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suspicious_requests_total",
		Help:      "Requests matching a known probe pattern.",
	},
)

// NewRegistry returns a registry holding the application collectors plus the
// Go runtime and process collectors.
func NewRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	all := append([]prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}, collectorsList...)
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("could not register %v with Prometheus: %w", c, err)
		}
	}
	return reg, nil
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Outcome maps an error to the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
