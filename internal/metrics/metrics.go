package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — коллекторы, которые видны на /metrics.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New регистрирует коллекторы в reg, /metrics отдаёт то, что собирает g.
// Обычно оба — один *prometheus.Registry.
func New(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_service_upstream_requests_total",
			Help: "Completion provider calls by operation and outcome",
		}, []string{"operation", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_service_upstream_duration_seconds",
			Help:    "Completion provider call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_service_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"route", "status"}),
		gatherer: g,
	}

	reg.MustRegister(m.upstreamRequests, m.upstreamDuration, m.httpRequests)
	return m
}

// ObserveUpstream — один вызов провайдера.
func (m *Metrics) ObserveUpstream(operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.upstreamRequests.WithLabelValues(operation, status).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
