// Package metrics holds the Prometheus instruments of the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poigateway_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poigateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poigateway_http_active_requests",
			Help: "Number of requests being served",
		},
	)

	DBCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poigateway_db_call_duration_seconds",
			Help:    "Duration of api.poi_* function calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	DBCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poigateway_db_call_errors_total",
			Help: "Failed api.poi_* function calls",
		},
		[]string{"function"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordDBCall records one database function call.
func RecordDBCall(function string, d time.Duration, err error) {
	DBCallDuration.WithLabelValues(function).Observe(d.Seconds())
	if err != nil {
		DBCallErrors.WithLabelValues(function).Inc()
	}
}

// Middleware instruments requests. The route label is the chi route pattern
// so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		APIActiveRequests.Inc()
		defer APIActiveRequests.Dec()

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordAPIRequest(r.Method, route, status, time.Since(start))
	})
}
