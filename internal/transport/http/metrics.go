package http

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariffscope",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by path and status code.",
		},
		[]string{"path", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariffscope",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariffscope",
			Name:      "predictions_total",
			Help:      "Predictions served by strategy.",
		},
		[]string{"strategy"},
	)
)

// RecordPrediction counts one served prediction.
func RecordPrediction(strategy string) {
	predictionsTotal.WithLabelValues(strategy).Inc()
}

// Metrics records request counts and latency per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		requestsTotal.WithLabelValues(path, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
