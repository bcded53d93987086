package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"store-admin/internal/app"
	"store-admin/internal/core"
)

// listCoupons handles GET /api/coupons.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCoupons(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// generateCoupons handles POST /api/coupons.
// Body: { amount, currency, durationDays, quantity }
func (h *Handler) generateCoupons(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency"`
		DurationDays int             `json:"durationDays"`
		Quantity     int             `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.GenerateCoupons(r.Context(), app.GenerateCouponsRequest{
		Amount:       body.Amount,
		Currency:     body.Currency,
		DurationDays: body.DurationDays,
		Quantity:     body.Quantity,
		Issuer:       requestActor(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// editCoupon handles PATCH /api/coupons/{id}.
// Body: { amount?, durationDays? }
func (h *Handler) editCoupon(w http.ResponseWriter, r *http.Request) {
	var body core.EditCouponInput
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.EditCoupon(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Coupon)
}

// toggleCoupon handles POST /api/coupons/{id}/toggle.
func (h *Handler) toggleCoupon(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ToggleCoupon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Coupon)
}

// deleteCoupon handles DELETE /api/coupons/{id}.
func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportCoupons handles GET /api/coupons/export.
func (h *Handler) exportCoupons(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExportCoupons(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// redeemCoupon handles POST /api/coupons/redeem.
// Body: { code }
func (h *Handler) redeemCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.RedeemCoupon(r.Context(), body.Code)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Coupon)
}
