package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal        *prometheus.CounterVec
	uploadBytes         *prometheus.HistogramVec
	classificationTotal *prometheus.CounterVec
	remoteFilesDeleted  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invx",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "invx",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invx",
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Total upload attempts by outcome code.",
		},
		[]string{"service", "code"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invx",
			Subsystem: "upload",
			Name:      "bytes",
			Help:      "Distribution of accepted upload sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"service"},
	)
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invx",
			Subsystem: "classify",
			Name:      "requests_total",
			Help:      "Total classification calls by verdict and confidence.",
		},
		[]string{"service", "is_po", "confidence"},
	)
	remoteFilesDeleted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invx",
			Subsystem: "files",
			Name:      "deleted_total",
			Help:      "Total remote file deletions requested through the API.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadBytes,
		classificationTotal,
		remoteFilesDeleted,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		uploadsTotal:        uploadsTotal,
		uploadBytes:         uploadBytes,
		classificationTotal: classificationTotal,
		remoteFilesDeleted:  remoteFilesDeleted,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/files/"):
		return "/v1/files/{name}"
	case strings.HasPrefix(path, "/v1/workspace/invoices/"):
		return "/v1/workspace/invoices/{id}"
	case strings.HasPrefix(path, "/v1/workspace/products/"):
		return "/v1/workspace/products/{id}"
	case strings.HasPrefix(path, "/v1/workspace/customers/"):
		return "/v1/workspace/customers/{id}"
	default:
		return path
	}
}

// RecordUpload counts one upload attempt. code is "OK" for accepted uploads,
// otherwise the stable pipeline error code.
func (m *HTTPServerMetrics) RecordUpload(service, code string, size int64) {
	if code == "" {
		code = "OK"
	}
	m.uploadsTotal.WithLabelValues(service, code).Inc()
	if code == "OK" && size > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(size))
	}
}

func (m *HTTPServerMetrics) RecordClassification(service string, isPurchaseOrder bool, confidence string) {
	if confidence == "" {
		confidence = "unknown"
	}
	m.classificationTotal.WithLabelValues(service, strconv.FormatBool(isPurchaseOrder), confidence).Inc()
}

func (m *HTTPServerMetrics) RecordRemoteFileDeletion(service string) {
	m.remoteFilesDeleted.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
