// Package metrics 定义服务进程内共享的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP instrumentation metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mercari_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mercari_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mercari_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// Business metrics
	ItemsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mercari_items_submitted_total",
			Help: "Total number of items accepted into the catalog",
		},
	)

	ImagesSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mercari_images_saved_total",
			Help: "Image blobs persisted, labelled by whether the write was skipped as a duplicate",
		},
		[]string{"result"},
	)

	ImageFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mercari_image_fallbacks_total",
			Help: "Image lookups that missed and were served the default image",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestsInFlight)
	prometheus.MustRegister(ItemsSubmitted)
	prometheus.MustRegister(ImagesSaved)
	prometheus.MustRegister(ImageFallbacks)
}
