package ports

import (
	"context"
	"io"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

// FileIngestor is the inbound contract for the normalize/stage/gateway
// upload pipeline.
type FileIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for upload ledger records.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentClassifierService classifies raw uploads as purchase orders.
type DocumentClassifierService interface {
	ClassifyUpload(ctx context.Context, filename, mimeType string, body io.Reader) (domain.Classification, error)
	ClassifyText(ctx context.Context, text string) (domain.Classification, error)
}
