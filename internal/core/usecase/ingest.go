package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
	"github.com/ntimofeev/invoice-extractor/internal/workspace"
)

// IngestDocumentUseCase runs the upload pipeline: normalize, stage, record
// in the ledger, hand to the extraction gateway, publish the staged event.
// The ledger record is written before the gateway call so a gateway or
// publish failure leaves a failed row instead of nothing.
type IngestDocumentUseCase struct {
	normalizer ports.FileNormalizer
	staging    ports.StagingStore
	extractor  ports.TextExtractor
	gateway    ports.FileGateway
	repo       ports.DocumentRepository
	queue      ports.MessageQueue
	uploads    *workspace.UploadStore
	log        *slog.Logger
}

func NewIngestDocumentUseCase(
	normalizer ports.FileNormalizer,
	staging ports.StagingStore,
	extractor ports.TextExtractor,
	gateway ports.FileGateway,
	repo ports.DocumentRepository,
	queue ports.MessageQueue,
	uploads *workspace.UploadStore,
	log *slog.Logger,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		normalizer: normalizer,
		staging:    staging,
		extractor:  extractor,
		gateway:    gateway,
		repo:       repo,
		queue:      queue,
		uploads:    uploads,
		log:        log,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	uc.uploads.SetUploading(true)
	defer uc.uploads.SetUploading(false)

	staged, err := uc.normalizer.Normalize(ctx, filename, mimeType, size, body)
	if err != nil {
		return nil, fmt.Errorf("normalize upload: %w", err)
	}

	path, err := uc.staging.Save(ctx, staged.Key, bytes.NewReader(staged.Data))
	if err != nil {
		return nil, domain.NewUploadError(domain.CodeUploadFailed, "stage normalized file", err)
	}
	staged.Path = path

	// The staged artifact only exists for the gateway handoff. Cleanup runs
	// whether or not the upload succeeded; a leftover file is logged, never
	// surfaced. The worker classifies over ExtractedText, which outlives the
	// staged copy on the ledger row.
	defer func() {
		if err := uc.staging.Remove(context.WithoutCancel(ctx), staged.Key); err != nil {
			uc.log.Warn("remove staged file", "key", staged.Key, "error", err)
		}
	}()

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:            uuid.NewString(),
		Filename:      staged.FileName,
		MimeType:      staged.MimeType,
		StagingKey:    staged.Key,
		ExtractedText: uc.extractText(ctx, staged),
		Status:        domain.StatusStaged,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, domain.NewUploadError(domain.CodeUploadFailed, "create ledger record", err)
	}

	remote, err := uc.gateway.Upload(ctx, staged)
	if err != nil {
		uc.markFailed(ctx, doc.ID, err)
		if _, ok := domain.AsUploadError(err); ok {
			return nil, err
		}
		return nil, domain.NewUploadError(domain.CodeUploadFailed, "gateway upload", err)
	}

	if err := uc.repo.SaveRemoteFile(ctx, doc.ID, remote); err != nil {
		uc.markFailed(ctx, doc.ID, err)
		return nil, domain.NewUploadError(domain.CodeUploadFailed, "save remote file handle", err)
	}
	doc.RemoteURI = remote.URI
	doc.RemoteName = remote.Name
	doc.DisplayName = remote.DisplayName
	doc.Status = domain.StatusUploaded

	if err := uc.queue.PublishDocumentStaged(ctx, doc.ID); err != nil {
		uc.markFailed(ctx, doc.ID, err)
		return nil, domain.NewUploadError(domain.CodeUploadFailed, "publish staged event", err)
	}

	uc.uploads.Add(remote)
	return doc, nil
}

// extractText reads the staged copy back and pulls classification text out
// of it. Extraction is advisory: on any failure the document proceeds with
// empty text and the worker skips the classification gate.
func (uc *IngestDocumentUseCase) extractText(ctx context.Context, staged domain.StagedFile) string {
	rc, err := uc.staging.Open(ctx, staged.Key)
	if err != nil {
		uc.log.Warn("open staged file for text extraction", "key", staged.Key, "error", err)
		return ""
	}
	defer rc.Close()

	text, err := uc.extractor.Extract(ctx, staged.FileName, staged.MimeType, rc)
	if err != nil {
		uc.log.Warn("extract classification text", "key", staged.Key, "error", err)
		return ""
	}
	return text
}

func (uc *IngestDocumentUseCase) markFailed(ctx context.Context, id string, cause error) {
	err := uc.repo.UpdateStatus(context.WithoutCancel(ctx), id, domain.StatusFailed, cause.Error())
	if err != nil {
		uc.log.Warn("mark document failed", "document_id", id, "error", err)
	}
}
