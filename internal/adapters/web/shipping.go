package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// shippingCosts handles GET /api/shipping/costs.
func (h *Handler) shippingCosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ShippingCosts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateShippingCost handles PUT /api/shipping/costs/{governorateId}.
// Body: { cost }
func (h *Handler) updateShippingCost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cost decimal.Decimal `json:"cost"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateShippingCost(r.Context(), chi.URLParam(r, "governorateId"), body.Cost)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Cost)
}

type minimumOrderBody struct {
	MinimumOrderAmount decimal.Decimal `json:"minimumOrderAmount"`
}

// minimumOrder handles GET /api/shipping/minimum-order.
func (h *Handler) minimumOrder(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.MinimumOrderAmount(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, minimumOrderBody{MinimumOrderAmount: amount})
}

// setMinimumOrder handles PUT /api/shipping/minimum-order.
// Body: { minimumOrderAmount }
func (h *Handler) setMinimumOrder(w http.ResponseWriter, r *http.Request) {
	var body minimumOrderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.svc.SetMinimumOrderAmount(r.Context(), body.MinimumOrderAmount); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, body)
}
