package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := pathTail(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// classifyDocument accepts either a multipart upload or a JSON body with a
// "text" field and returns the purchase-order verdict.
func (rt *Router) classifyDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
			return
		}
		defer file.Close()

		result, err := rt.classify.ClassifyUpload(r.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		rt.recordClassification(result.IsPurchaseOrder, string(result.Confidence))
		writeJSON(w, http.StatusOK, result)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	result, err := rt.classify.ClassifyText(r.Context(), req.Text)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	rt.recordClassification(result.IsPurchaseOrder, string(result.Confidence))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordClassification(isPurchaseOrder bool, confidence string) {
	if rt.metrics != nil {
		rt.metrics.RecordClassification("api", isPurchaseOrder, confidence)
	}
}
