package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
	"github.com/ntimofeev/invoice-extractor/internal/registry"
	"github.com/ntimofeev/invoice-extractor/internal/workspace"
)

// ProcessDocumentUseCase runs the pipeline for one ledger record: classify
// the text captured at ingest, then ask the model for schema-constrained
// JSON over the remote file handle and merge the result into the workspace.
// A document the classifier confidently rules out as a purchase order is
// rejected without an extraction call.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	model      ports.GenerativeModel
	classifier ports.DocumentClassifier
	data       *workspace.DataStore
	log        *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	model ports.GenerativeModel,
	classifier ports.DocumentClassifier,
	data *workspace.DataStore,
	log *slog.Logger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{repo: repo, model: model, classifier: classifier, data: data, log: log}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if rejected, err := uc.rejectNonPurchaseOrder(ctx, doc); err != nil {
		return err
	} else if rejected {
		return nil
	}

	result, err := uc.extract(ctx, doc)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	uc.data.MergeExtraction(result)

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

// rejectNonPurchaseOrder routes the document on the classifier verdict. Only
// a confident negative stops the pipeline; an unsure verdict, empty text, or
// a classifier failure lets extraction decide.
func (uc *ProcessDocumentUseCase) rejectNonPurchaseOrder(ctx context.Context, doc *domain.Document) (bool, error) {
	if doc.ExtractedText == "" {
		return false, nil
	}

	verdict, err := uc.classifier.Classify(ctx, doc.ExtractedText)
	if err != nil {
		uc.log.Warn("classify document text", "document_id", doc.ID, "error", err)
		return false, nil
	}
	uc.log.Info("document classified",
		"document_id", doc.ID,
		"is_purchase_order", verdict.IsPurchaseOrder,
		"confidence", verdict.Confidence)

	if verdict.IsPurchaseOrder || verdict.Confidence != domain.ConfidenceHigh {
		return false, nil
	}

	msg := "classified as non purchase order with high confidence"
	if err := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusRejected, msg); err != nil {
		return false, fmt.Errorf("set status=rejected: %w", err)
	}
	return true, nil
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, doc *domain.Document) (domain.ExtractionResult, error) {
	if doc.RemoteURI == "" {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "extract invoice",
			fmt.Errorf("document %s has no remote file", doc.ID))
	}

	task, ok := registry.Lookup(registry.TaskInvoiceExtraction)
	if !ok {
		return domain.ExtractionResult{}, fmt.Errorf("task %s not registered", registry.TaskInvoiceExtraction)
	}

	remote := domain.RemoteFile{
		URI:         doc.RemoteURI,
		DisplayName: doc.DisplayName,
		MimeType:    doc.MimeType,
		Name:        doc.RemoteName,
	}
	raw, err := uc.model.GenerateJSON(ctx, task.Instruction, task.ResponseSchema, &remote)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("generate extraction: %w", err)
	}

	// A schema violation is a data-quality problem, not a system fault. The
	// response is still decoded; fields the model left out end up in the
	// missing-fields ledger instead of failing the document.
	if err := task.Validate(raw); err != nil {
		uc.log.Warn("extraction response violates schema",
			"document_id", doc.ID, "error", err)
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "decode extraction", err)
	}
	return result, nil
}
