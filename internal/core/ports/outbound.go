package ports

import (
	"context"
	"io"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

// DocumentRepository persists and reads upload ledger state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveRemoteFile(ctx context.Context, id string, remote domain.RemoteFile) error
}

// StagingStore holds normalized artifacts between normalization and the
// gateway upload. Remove is best-effort cleanup.
type StagingStore interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// FileNormalizer validates an upload and converts spreadsheets to CSV
// before staging. Failures carry stable domain.UploadError codes.
type FileNormalizer interface {
	Normalize(ctx context.Context, filename, mimeType string, size int64, body io.Reader) (domain.StagedFile, error)
}

// FileGateway wraps the external AI service's file manager.
type FileGateway interface {
	Upload(ctx context.Context, staged domain.StagedFile) (domain.RemoteFile, error)
	List(ctx context.Context) ([]domain.RemoteFile, error)
	Delete(ctx context.Context, name string) error
}

// GenerativeModel runs one schema-constrained extraction call. The file is
// optional: classification prompts carry their input inline.
type GenerativeModel interface {
	GenerateJSON(ctx context.Context, prompt string, responseSchema map[string]any, file *domain.RemoteFile) ([]byte, error)
}

// TextExtractor pulls plain text out of an upload for classification input.
type TextExtractor interface {
	Extract(ctx context.Context, filename, mimeType string, body io.Reader) (string, error)
}

// DocumentClassifier decides whether extracted text is a purchase order.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// MessageQueue publishes/consumes staged-document events.
type MessageQueue interface {
	PublishDocumentStaged(ctx context.Context, documentID string) error
	SubscribeDocumentStaged(ctx context.Context, handler func(context.Context, string) error) error
}
