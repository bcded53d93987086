package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// listOrders handles GET /api/stores/{currency}/orders?filter=all|awaiting|confirmed.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOrders(r.Context(), currency(r), r.URL.Query().Get("filter"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getOrder handles GET /api/stores/{currency}/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), currency(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// confirmOrder handles POST /api/stores/{currency}/orders/{id}/confirm.
// A repeat confirmation answers 200 with alreadyConfirmed=true and the existing payment.
func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ConfirmOrder(r.Context(), currency(r), chi.URLParam(r, "id"), requestActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listPayments handles GET /api/stores/{currency}/payments.
func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPayments(r.Context(), currency(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// shipPayment handles POST /api/stores/{currency}/payments/{id}/ship.
func (h *Handler) shipPayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ShipPayment(r.Context(), currency(r), chi.URLParam(r, "id"), requestActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Payment)
}
