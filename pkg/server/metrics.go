package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "textgrid",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	metricRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "textgrid",
		Name:      "render_duration_seconds",
		Help:      "Time spent laying out and encoding a document.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"kind"})
	metricRenderedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "textgrid",
		Name:      "rendered_lines_total",
		Help:      "Output lines produced by render requests.",
	}, []string{"kind"})
	metricRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "textgrid",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
	metricEventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "textgrid",
		Name:      "event_subscribers",
		Help:      "Open /v1/events streams.",
	})
)
