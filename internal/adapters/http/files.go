package httpadapter

import (
	"net/http"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

type uploadResponse struct {
	Message     string `json:"message"`
	FileURI     string `json:"fileUri"`
	DisplayName string `json:"displayName"`
	MimeType    string `json:"mimeType"`
	RequestID   string `json:"requestId"`
}

type listedFile struct {
	URI         string `json:"uri"`
	DisplayName string `json:"displayName"`
	MimeType    string `json:"mimeType"`
	Name        string `json:"name"`
}

func (rt *Router) files(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadFile(w, r)
	case http.MethodGet:
		rt.listFiles(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload(domain.CodeNoFile, 0)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "multipart field 'file' is required",
			"code":  domain.CodeNoFile,
		})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		code, status := uploadErrorCode(err)
		rt.recordUpload(code, 0)
		writeJSON(w, status, map[string]string{"error": err.Error(), "code": code})
		return
	}

	rt.recordUpload("OK", fileHeader.Size)
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:     "File uploaded successfully",
		FileURI:     doc.RemoteURI,
		DisplayName: doc.DisplayName,
		MimeType:    doc.MimeType,
		RequestID:   requestIDFromContext(r.Context()),
	})
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	if err := rt.uploads.Refresh(r.Context()); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	files := rt.uploads.Files()
	out := make([]listedFile, 0, len(files))
	for _, f := range files {
		out = append(out, listedFile{
			URI:         f.URI,
			DisplayName: f.DisplayName,
			MimeType:    f.MimeType,
			Name:        f.Name,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) fileByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	name := pathTail(r.URL.Path, "/v1/files/")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file name is required"})
		return
	}

	if err := rt.gateway.Delete(r.Context(), name); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	rt.uploads.Remove(name)
	if rt.metrics != nil {
		rt.metrics.RecordRemoteFileDeletion("api")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) recordUpload(code string, size int64) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload("api", code, size)
	}
}

// uploadErrorCode resolves the stable code and HTTP class for one failed
// upload. Validation codes are the client's fault; everything else is an
// infrastructure failure.
func uploadErrorCode(err error) (string, int) {
	if ue, ok := domain.AsUploadError(err); ok {
		if ue.IsValidation() {
			return ue.Code, http.StatusBadRequest
		}
		return ue.Code, http.StatusInternalServerError
	}
	return domain.CodeUploadFailed, mapErrorToHTTPStatus(err)
}
