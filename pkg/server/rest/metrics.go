package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	routeSearchesTotal *prometheus.CounterVec
	routeFallbacks     prometheus.Counter
	cacheHits          prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resqmap",
			Name:      "http_requests_total",
			Help:      "Number of handled http requests.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resqmap",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of http requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"path", "method"}),
		routeSearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resqmap",
			Name:      "route_searches_total",
			Help:      "Number of served routes by algorithm (astar, ml, cached).",
		}, []string{"algorithm"}),
		routeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resqmap",
			Name:      "route_fallbacks_total",
			Help:      "Number of routes degraded to the direct two-point path.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resqmap",
			Name:      "route_cache_hits_total",
			Help:      "Number of offline route cache hits.",
		}),
	}
	reg.MustRegister(m.httpRequestsTotal, m.httpDuration, m.routeSearchesTotal,
		m.routeFallbacks, m.cacheHits)
	return m
}

func (m *Metrics) ObserveRoute(algorithm string, fallback bool) {
	if m == nil {
		return
	}
	m.routeSearchesTotal.WithLabelValues(algorithm).Inc()
	if fallback {
		m.routeFallbacks.Inc()
	}
	if algorithm == "cached" {
		m.cacheHits.Inc()
	}
}

// PromeHttpMiddleware records request counts and latencies per route.
func PromeHttpMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			m.httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method,
				strconv.Itoa(ww.Status())).Inc()
			m.httpDuration.WithLabelValues(r.URL.Path, r.Method).
				Observe(time.Since(start).Seconds())
		})
	}
}
