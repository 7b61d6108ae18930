package normalizer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadCode(t *testing.T, err error) string {
	t.Helper()
	ue, ok := domain.AsUploadError(err)
	if !ok {
		t.Fatalf("expected UploadError, got %v", err)
	}
	return ue.Code
}

func TestNormalizePassThrough(t *testing.T) {
	n := New(0)
	payload := []byte("%PDF-1.4 test")

	staged, err := n.Normalize(context.Background(), "dir/invoice.pdf", "application/pdf", int64(len(payload)), bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !bytes.Equal(staged.Data, payload) {
		t.Fatalf("payload modified on pass-through")
	}
	if staged.FileName != "invoice.pdf" {
		t.Fatalf("FileName = %q, want base name", staged.FileName)
	}
	if staged.MimeType != "application/pdf" {
		t.Fatalf("MimeType = %q", staged.MimeType)
	}
	if !strings.HasSuffix(staged.Key, "_invoice.pdf") {
		t.Fatalf("Key = %q, want timestamp prefix", staged.Key)
	}
}

func TestNormalizeNoFile(t *testing.T) {
	n := New(0)
	_, err := n.Normalize(context.Background(), "", "application/pdf", 10, bytes.NewReader(nil))
	if code := uploadCode(t, err); code != domain.CodeNoFile {
		t.Fatalf("code = %q, want %q", code, domain.CodeNoFile)
	}
}

type poisonReader struct {
	reads int
}

func (r *poisonReader) Read([]byte) (int, error) {
	r.reads++
	return 0, errors.New("body must not be read")
}

func TestNormalizeDeclaredSizeRejectedBeforeRead(t *testing.T) {
	n := New(100)
	body := &poisonReader{}

	_, err := n.Normalize(context.Background(), "big.pdf", "application/pdf", 101, body)
	if code := uploadCode(t, err); code != domain.CodeFileTooLarge {
		t.Fatalf("code = %q, want %q", code, domain.CodeFileTooLarge)
	}
	if body.reads != 0 {
		t.Fatalf("body was read %d times before size rejection", body.reads)
	}
}

func TestNormalizeActualSizeOverLimit(t *testing.T) {
	n := New(10)
	payload := bytes.Repeat([]byte("a"), 11)

	// Declared size lies under the limit; the read still catches it.
	_, err := n.Normalize(context.Background(), "a.pdf", "application/pdf", 5, bytes.NewReader(payload))
	if code := uploadCode(t, err); code != domain.CodeFileTooLarge {
		t.Fatalf("code = %q, want %q", code, domain.CodeFileTooLarge)
	}
}

func TestNormalizeUnsupportedType(t *testing.T) {
	n := New(0)
	_, err := n.Normalize(context.Background(), "a.exe", "application/octet-stream", 4, bytes.NewReader([]byte("MZxx")))
	if code := uploadCode(t, err); code != domain.CodeInvalidFileFormat {
		t.Fatalf("code = %q, want %q", code, domain.CodeInvalidFileFormat)
	}
}

func TestNormalizeXLSXConversion(t *testing.T) {
	wb := buildWorkbook(t, [][]any{
		{"Description", "Quantity", "Rate/Item"},
		{"Widget", 2, 150.5},
	})
	n := New(0)

	staged, err := n.Normalize(context.Background(), "orders.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", int64(len(wb)), bytes.NewReader(wb))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if staged.FileName != "orders.csv" {
		t.Fatalf("FileName = %q, want orders.csv", staged.FileName)
	}
	if staged.MimeType != "text/csv" {
		t.Fatalf("MimeType = %q, want text/csv", staged.MimeType)
	}
	got := string(staged.Data)
	if !strings.HasPrefix(got, "Description,Quantity,Rate/Item\n") {
		t.Fatalf("csv header missing: %q", got)
	}
	if !strings.Contains(got, "Widget,2,150.5") {
		t.Fatalf("csv row missing: %q", got)
	}
}

func TestNormalizeCorruptWorkbook(t *testing.T) {
	n := New(0)
	payload := []byte("not a zip archive")

	_, err := n.Normalize(context.Background(), "bad.xlsx",
		"application/vnd.ms-excel", int64(len(payload)), bytes.NewReader(payload))
	if code := uploadCode(t, err); code != domain.CodeExcelConversionFailed {
		t.Fatalf("code = %q, want %q", code, domain.CodeExcelConversionFailed)
	}
}

func TestNormalizeEmptySheetProceedsWithEmptyCSV(t *testing.T) {
	wb := buildWorkbook(t, nil)
	n := New(0)

	staged, err := n.Normalize(context.Background(), "empty.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", int64(len(wb)), bytes.NewReader(wb))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if staged.FileName != "empty.csv" || staged.MimeType != "text/csv" {
		t.Fatalf("staged = %+v", staged)
	}
	if len(staged.Data) != 0 {
		t.Fatalf("Data = %q, want empty csv", staged.Data)
	}
}

func TestNormalizeConvertedCSVOverLimit(t *testing.T) {
	// Repetitive cells compress well in the workbook but expand in CSV, so
	// the converted artifact can cross a ceiling the original fits under.
	cell := strings.Repeat("x", 1000)
	rows := make([][]any, 200)
	for i := range rows {
		rows[i] = []any{cell}
	}
	wb := buildWorkbook(t, rows)

	n := New(int64(len(wb)) + 1024)
	_, err := n.Normalize(context.Background(), "big.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", int64(len(wb)), bytes.NewReader(wb))
	if code := uploadCode(t, err); code != domain.CodeConvertedFileTooLarge {
		t.Fatalf("code = %q, want %q", code, domain.CodeConvertedFileTooLarge)
	}
}
