// Package doctext pulls plain text out of uploads for classification. PDFs
// go through a text extraction pass; textual formats are passed through.
package doctext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, filename, mimeType string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	switch mimeType {
	case "application/pdf":
		return extractPDF(raw)
	case "text/csv", "text/plain", "application/json":
		if !utf8.Valid(raw) {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract text",
				fmt.Errorf("%s declared textual but is not valid utf-8", filename))
		}
		return strings.TrimSpace(string(raw)), nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text",
			fmt.Errorf("no text extraction for %s", mimeType))
	}
}

func extractPDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	textReader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}
