package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"store-admin/internal/app"
	"store-admin/internal/core"
)

// listProducts handles GET /api/stores/{currency}/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context(), currency(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getProduct handles GET /api/stores/{currency}/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProduct(r.Context(), currency(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// createProduct handles POST /api/stores/{currency}/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body core.ProductInput
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateProduct(r.Context(), currency(r), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

// updateProduct handles PUT /api/stores/{currency}/products/{id}. Absent fields are kept.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var body core.ProductUpdate
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateProduct(r.Context(), currency(r), chi.URLParam(r, "id"), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// deleteProduct handles DELETE /api/stores/{currency}/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), currency(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adjustStock handles POST /api/stores/{currency}/products/{id}/stock.
// Body: { delta }
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AdjustStock(r.Context(), currency(r), chi.URLParam(r, "id"), body.Delta)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// syncProduct handles POST /api/stores/{currency}/products/{id}/sync.
// Body: { target, rate }
func (h *Handler) syncProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string          `json:"target"`
		Rate   decimal.Decimal `json:"rate"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.SyncProduct(r.Context(), app.SyncProductRequest{
		Source:    currency(r),
		Target:    body.Target,
		ProductID: chi.URLParam(r, "id"),
		Rate:      body.Rate,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
