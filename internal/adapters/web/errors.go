package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"store-admin/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error to its HTTP status. Store failures are logged
// and reported with a generic retry message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch core.KindOf(err) {
	case core.KindValidation:
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case core.KindNotFound:
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case core.KindPrecondition:
		code := "PRECONDITION_FAILED"
		if errors.Is(err, core.ErrAlreadyConfirmed) {
			code = "ALREADY_CONFIRMED"
		}
		writeError(w, r, err.Error(), code, http.StatusConflict)
	case core.KindStore:
		h.log.Error("store operation failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, r, "the store is temporarily unavailable, please retry", "STORE_ERROR", http.StatusBadGateway)
	default:
		h.log.Error("unexpected error",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
