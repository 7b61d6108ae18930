package usecase

import (
	"context"
	"fmt"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
)

// GetDocumentUseCase is the read model for upload ledger records.
type GetDocumentUseCase struct {
	repo ports.DocumentRepository
}

func NewGetDocumentUseCase(repo ports.DocumentRepository) *GetDocumentUseCase {
	return &GetDocumentUseCase{repo: repo}
}

func (uc *GetDocumentUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}
