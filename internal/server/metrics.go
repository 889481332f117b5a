package server

import (
	"net/http"
	"time"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenprinter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokenprinter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Conversion metrics
	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenprinter_conversions_total",
			Help: "Total number of conversions",
		},
		[]string{"source", "status"}, // source: http, websocket
	)

	conversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokenprinter_conversion_duration_seconds",
			Help:    "Conversion duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"source"},
	)

	conversionImages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tokenprinter_conversion_images",
			Help:    "Number of images placed per successful conversion",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tokenprinter_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenprinter_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func recordConversion(source string, res convert.Result, d time.Duration) {
	status := "success"
	if !res.Success {
		status = "error"
	}
	conversionsTotal.WithLabelValues(source, status).Inc()
	conversionDuration.WithLabelValues(source).Observe(d.Seconds())
	if res.Success {
		conversionImages.Observe(float64(res.Count))
	}
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
