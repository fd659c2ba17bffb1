package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	detectionsTotal    *prometheus.CounterVec
	detectionDuration  *prometheus.HistogramVec
	amountsPerDocument prometheus.Histogram
	detectedValue      prometheus.Histogram
	ocrDuration        prometheus.Histogram
	ocrFailuresTotal   *prometheus.CounterVec
	uploadBytes        prometheus.Histogram
	rejectedUploads    *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		detectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amount_detections_total",
				Help: "Total number of detection requests by input kind and outcome",
			},
			[]string{"input", "status"},
		),
		detectionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "amount_detection_duration_milliseconds",
				Help:    "Detection pipeline duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"input"},
		),
		amountsPerDocument: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "amounts_per_document",
				Help:    "Number of classified amounts per processed document",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
		),
		detectedValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "detected_amount_value",
				Help:    "Magnitude of detected amounts in document currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		ocrDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ocr_recognition_duration_milliseconds",
				Help:    "Text recognition duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
		),
		ocrFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_failures_total",
				Help: "Total number of text recognition failures by reason",
			},
			[]string{"reason"},
		),
		uploadBytes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "upload_size_bytes",
				Help:    "Size of accepted image uploads in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		rejectedUploads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rejected_uploads_total",
				Help: "Total number of rejected uploads by reason",
			},
			[]string{"reason"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "detection.processed":
		m.detectionsTotal.WithLabelValues(tags["input"], tags["status"]).Inc()
	case "ocr.failed":
		m.ocrFailuresTotal.WithLabelValues(tags["reason"]).Inc()
	case "upload.rejected":
		m.rejectedUploads.WithLabelValues(tags["reason"]).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "detection.text":
		m.detectionDuration.WithLabelValues("text").Observe(float64(duration.Milliseconds()))
	case "detection.image":
		m.detectionDuration.WithLabelValues("image").Observe(float64(duration.Milliseconds()))
	case "ocr.recognition":
		m.ocrDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "detection.amounts":
		m.amountsPerDocument.Observe(value)
	case "detection.value":
		m.detectedValue.Observe(value)
	case "upload.bytes":
		m.uploadBytes.Observe(value)
	}
}
