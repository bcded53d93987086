package web

import "net/http"

// statistics handles GET /api/stores/{currency}/statistics?range=all|today|week|month|year.
func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStatistics(r.Context(), currency(r), r.URL.Query().Get("range"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
