package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
)

// ClassifyDocumentUseCase decides whether an upload is a purchase order. It
// is synchronous: the text is pulled out locally, so no remote file handle
// is needed.
type ClassifyDocumentUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
}

func NewClassifyDocumentUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
) *ClassifyDocumentUseCase {
	return &ClassifyDocumentUseCase{extractor: extractor, classifier: classifier}
}

func (uc *ClassifyDocumentUseCase) ClassifyUpload(ctx context.Context, filename, mimeType string, body io.Reader) (domain.Classification, error) {
	text, err := uc.extractor.Extract(ctx, filename, mimeType, body)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("extract text: %w", err)
	}
	return uc.ClassifyText(ctx, text)
}

func (uc *ClassifyDocumentUseCase) ClassifyText(ctx context.Context, text string) (domain.Classification, error) {
	if text == "" {
		return domain.Classification{}, domain.WrapError(domain.ErrInvalidInput, "classify document",
			errors.New("empty document text"))
	}
	classification, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}
	return classification, nil
}
