// Package httpadapter exposes the upload pipeline, the remote file listing
// and the review workspace over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ntimofeev/invoice-extractor/internal/config"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
	"github.com/ntimofeev/invoice-extractor/internal/observability/metrics"
	"github.com/ntimofeev/invoice-extractor/internal/workspace"
)

type Router struct {
	cfg      config.Config
	ingest   ports.FileIngestor
	docs     ports.DocumentReader
	classify ports.DocumentClassifierService
	gateway  ports.FileGateway
	uploads  *workspace.UploadStore
	data     *workspace.DataStore
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.FileIngestor,
	docs ports.DocumentReader,
	classify ports.DocumentClassifierService,
	gateway ports.FileGateway,
	uploads *workspace.UploadStore,
	data *workspace.DataStore,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingest:   ingest,
		docs:     docs,
		classify: classify,
		gateway:  gateway,
		uploads:  uploads,
		data:     data,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/v1/files", rt.files)
	mux.HandleFunc("/v1/files/", rt.fileByName)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/classify", rt.classifyDocument)

	mux.HandleFunc("/v1/workspace/invoices", rt.listInvoices)
	mux.HandleFunc("/v1/workspace/invoices/", rt.invoiceByID)
	mux.HandleFunc("/v1/workspace/products", rt.listProducts)
	mux.HandleFunc("/v1/workspace/products/", rt.productByID)
	mux.HandleFunc("/v1/workspace/customers", rt.listCustomers)
	mux.HandleFunc("/v1/workspace/customers/", rt.customerByID)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware("api", handler)
	}
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func pathTail(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
