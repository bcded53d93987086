package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"store-admin/internal/app"
	"store-admin/internal/core"
)

// Handler holds the ApplicationService and the request dependencies of the JSON API.
type Handler struct {
	svc       app.ApplicationService
	log       *zap.Logger
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc, log: log, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// ── Currency stores ───────────────────────────────────────────────────
		r.Route("/api/stores/{currency}", func(r chi.Router) {
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Post("/orders/{id}/confirm", h.confirmOrder)

			r.Get("/payments", h.listPayments)
			r.Post("/payments/{id}/ship", h.shipPayment)

			r.Get("/products", h.listProducts)
			r.Post("/products", h.createProduct)
			r.Get("/products/{id}", h.getProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
			r.Post("/products/{id}/stock", h.adjustStock)
			r.Post("/products/{id}/sync", h.syncProduct)

			r.Get("/statistics", h.statistics)
		})

		// ── Coupons ───────────────────────────────────────────────────────────
		r.Get("/api/coupons", h.listCoupons)
		r.Post("/api/coupons", h.generateCoupons)
		r.Get("/api/coupons/export", h.exportCoupons)
		r.Post("/api/coupons/redeem", h.redeemCoupon)
		r.Patch("/api/coupons/{id}", h.editCoupon)
		r.Delete("/api/coupons/{id}", h.deleteCoupon)
		r.Post("/api/coupons/{id}/toggle", h.toggleCoupon)

		// ── Shipping ──────────────────────────────────────────────────────────
		r.Get("/api/shipping/costs", h.shippingCosts)
		r.Put("/api/shipping/costs/{governorateId}", h.updateShippingCost)
		r.Get("/api/shipping/minimum-order", h.minimumOrder)
		r.Put("/api/shipping/minimum-order", h.setMinimumOrder)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// currency extracts the {currency} URL parameter.
func currency(r *http.Request) string {
	return chi.URLParam(r, "currency")
}

// requestActor returns the authenticated admin. RequireAuth guarantees it on protected routes.
func requestActor(r *http.Request) core.Actor {
	a, _ := actorFromContext(r.Context())
	return a
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
