package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Stable upload pipeline error codes. Callers branch on the code, never on
// the message text.
const (
	CodeNoFile                = "NO_FILE"
	CodeFileTooLarge          = "FILE_TOO_LARGE"
	CodeInvalidFileFormat     = "INVALID_FILE_FORMAT"
	CodeEmptyExcelFile        = "EMPTY_EXCEL_FILE"
	CodeNoSheetFound          = "NO_SHEET_FOUND"
	CodeWorksheetReadError    = "WORKSHEET_READ_ERROR"
	CodeExcelConversionFailed = "EXCEL_CONVERSION_FAILED"
	CodeConvertedFileTooLarge = "CONVERTED_FILE_TOO_LARGE"
	CodeInitFailed            = "INIT_FAILED"
	CodeUploadFailed          = "UPLOAD_FAILED"
)

// validationCodes are client-caused failures reported with a 4xx class and
// never retried. Everything else is infrastructure-class.
var validationCodes = map[string]struct{}{
	CodeNoFile:                {},
	CodeFileTooLarge:          {},
	CodeInvalidFileFormat:     {},
	CodeEmptyExcelFile:        {},
	CodeNoSheetFound:          {},
	CodeConvertedFileTooLarge: {},
}

// UploadError carries a stable code through the normalize/stage/gateway
// pipeline. Cause keeps the underlying failure for diagnostics.
type UploadError struct {
	Code    string
	Message string
	Cause   error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether the error belongs to the validation class.
func (e *UploadError) IsValidation() bool {
	_, ok := validationCodes[e.Code]
	return ok
}

func NewUploadError(code, message string, cause error) *UploadError {
	return &UploadError{Code: code, Message: message, Cause: cause}
}

// AsUploadError unwraps err to the pipeline error carrying a stable code.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
