// Package metrics provides Prometheus instrumentation for the storefront.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the storefront's Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	ordersPlaced  *prometheus.CounterVec
	orderValue    prometheus.Histogram
	uploads       *prometheus.CounterVec
	imageRelays   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry so tests and
// multiple servers in one process don't collide on registration.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarshop_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solarshop_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersPlaced: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarshop_orders_placed_total",
				Help: "Total number of orders placed by payment method",
			},
			[]string{"payment_method"},
		),
		orderValue: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "solarshop_order_value",
				Help:    "Order totals in whole currency units",
				Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
			},
		),
		uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarshop_uploads_total",
				Help: "Total number of media uploads by result",
			},
			[]string{"result"},
		),
		imageRelays: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarshop_image_relay_total",
				Help: "Total number of image host relay attempts by result",
			},
			[]string{"result"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarshop_order_notifications_total",
				Help: "Total number of order notifications by result",
			},
			[]string{"result"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveOrder records a placed order.
func (r *Recorder) ObserveOrder(paymentMethod string, total int64) {
	r.ordersPlaced.WithLabelValues(paymentMethod).Inc()
	r.orderValue.Observe(float64(total))
}

// IncUpload counts an upload attempt.
func (r *Recorder) IncUpload(success bool) {
	r.uploads.WithLabelValues(result(success)).Inc()
}

// IncImageRelay counts an image host relay attempt.
func (r *Recorder) IncImageRelay(success bool) {
	r.imageRelays.WithLabelValues(result(success)).Inc()
}

// IncNotification counts an order notification attempt.
func (r *Recorder) IncNotification(success bool) {
	r.notifications.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// =============================================================================
// HTTP Middleware
// =============================================================================

// Middleware records request counts and latency labelled by the chi route
// pattern rather than the raw path, keeping label cardinality bounded.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(sw.status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
