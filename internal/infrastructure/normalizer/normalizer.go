// Package normalizer validates uploads and converts spreadsheets to CSV so
// every artifact handed to the extraction gateway is a flat, model-readable
// file.
package normalizer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

// DefaultMaxFileSize is the ceiling applied to both the declared upload size
// and the converted CSV.
const DefaultMaxFileSize = 2 << 30 // 2 GiB

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeCSV  = "text/csv"
)

var allowedMimeTypes = map[string]struct{}{
	mimeXLSX:           {},
	mimeXLS:            {},
	mimeCSV:            {},
	"text/plain":       {},
	"application/pdf":  {},
	"image/png":        {},
	"image/jpeg":       {},
	"image/webp":       {},
	"application/json": {},
}

type Normalizer struct {
	maxSize int64
	now     func() time.Time
}

func New(maxSize int64) *Normalizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Normalizer{maxSize: maxSize, now: time.Now}
}

// Normalize checks the declared name/type/size, converts spreadsheets to CSV
// and returns the staged artifact descriptor. The declared size is rejected
// before any byte of the body is read.
func (n *Normalizer) Normalize(_ context.Context, filename, mimeType string, size int64, body io.Reader) (domain.StagedFile, error) {
	if filename == "" || body == nil {
		return domain.StagedFile{}, domain.NewUploadError(domain.CodeNoFile, "no file provided", nil)
	}
	if size > n.maxSize {
		return domain.StagedFile{}, domain.NewUploadError(domain.CodeFileTooLarge,
			fmt.Sprintf("file exceeds %d byte limit", n.maxSize), nil)
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return domain.StagedFile{}, domain.NewUploadError(domain.CodeInvalidFileFormat,
			fmt.Sprintf("unsupported file type %q", mimeType), nil)
	}

	data, err := io.ReadAll(io.LimitReader(body, n.maxSize+1))
	if err != nil {
		return domain.StagedFile{}, domain.NewUploadError(domain.CodeUploadFailed, "read upload body", err)
	}
	if int64(len(data)) > n.maxSize {
		return domain.StagedFile{}, domain.NewUploadError(domain.CodeFileTooLarge,
			fmt.Sprintf("file exceeds %d byte limit", n.maxSize), nil)
	}

	if mimeType == mimeXLSX || mimeType == mimeXLS {
		data, err = n.convertToCSV(data)
		if err != nil {
			return domain.StagedFile{}, err
		}
		filename = replaceExt(filename, ".csv")
		mimeType = mimeCSV
	}

	name := filepath.Base(filename)
	return domain.StagedFile{
		Key:      fmt.Sprintf("%d_%s", n.now().UnixMilli(), name),
		Data:     data,
		MimeType: mimeType,
		FileName: name,
	}, nil
}

// convertToCSV flattens the first worksheet. Only the first sheet carries
// invoice data in the supported workbooks.
func (n *Normalizer) convertToCSV(data []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewUploadError(domain.CodeExcelConversionFailed, "open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewUploadError(domain.CodeEmptyExcelFile, "workbook has no sheets", nil)
	}
	if sheets[0] == "" {
		return nil, domain.NewUploadError(domain.CodeNoSheetFound, "first sheet has no name", nil)
	}

	// An empty but readable sheet converts to an empty CSV and proceeds;
	// only an unreadable sheet is an error.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.NewUploadError(domain.CodeWorksheetReadError,
			fmt.Sprintf("read sheet %q", sheets[0]), err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, domain.NewUploadError(domain.CodeExcelConversionFailed, "write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewUploadError(domain.CodeExcelConversionFailed, "flush csv", err)
	}

	if int64(buf.Len()) > n.maxSize {
		return nil, domain.NewUploadError(domain.CodeConvertedFileTooLarge,
			fmt.Sprintf("converted csv exceeds %d byte limit", n.maxSize), nil)
	}
	return buf.Bytes(), nil
}

func replaceExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}
