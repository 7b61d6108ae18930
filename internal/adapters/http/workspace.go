package httpadapter

import (
	"encoding/json"
	"net/http"
)

func (rt *Router) listInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.data.Invoices())
}

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.data.Products())
}

func (rt *Router) listCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.data.Customers())
}

func (rt *Router) invoiceByID(w http.ResponseWriter, r *http.Request) {
	rt.workspaceRecord(w, r, "/v1/workspace/invoices/",
		func(id string, patch map[string]json.RawMessage) (any, bool, error) {
			inv, ok, err := rt.data.UpdateInvoice(id, patch)
			return inv, ok, err
		},
		rt.data.RemoveInvoice,
	)
}

func (rt *Router) productByID(w http.ResponseWriter, r *http.Request) {
	rt.workspaceRecord(w, r, "/v1/workspace/products/",
		func(id string, patch map[string]json.RawMessage) (any, bool, error) {
			p, ok, err := rt.data.UpdateProduct(id, patch)
			return p, ok, err
		},
		rt.data.RemoveProduct,
	)
}

func (rt *Router) customerByID(w http.ResponseWriter, r *http.Request) {
	rt.workspaceRecord(w, r, "/v1/workspace/customers/",
		func(id string, patch map[string]json.RawMessage) (any, bool, error) {
			c, ok, err := rt.data.UpdateCustomer(id, patch)
			return c, ok, err
		},
		rt.data.RemoveCustomer,
	)
}

// workspaceRecord handles PATCH and DELETE for one keyed collection. A patch
// against an unknown id is a no-op answered with 204, matching the editing
// UI's tolerance for stale references. Deletes are idempotent.
func (rt *Router) workspaceRecord(
	w http.ResponseWriter,
	r *http.Request,
	prefix string,
	update func(string, map[string]json.RawMessage) (any, bool, error),
	remove func(string),
) {
	id := pathTail(r.URL.Path, prefix)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record id is required"})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		record, ok, err := update(id, patch)
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		remove(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
