package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "productos/backend/internal/domain/product"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeProductError maps the product error taxonomy onto HTTP statuses.
func (s *Server) writeProductError(w http.ResponseWriter, r *http.Request, err error) {
	var violation *domain.ConstraintViolationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.StoreError("not_found")
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &violation) && violation.Unique():
		s.metrics.StoreError("constraint")
		writeError(w, http.StatusConflict, violation.Error())
	case errors.As(err, &violation):
		s.metrics.StoreError("constraint")
		writeError(w, http.StatusUnprocessableEntity, violation.Error())
	case errors.Is(err, domain.ErrConnectionFailure):
		s.metrics.StoreError("connection")
		writeError(w, http.StatusServiceUnavailable, domain.ErrConnectionFailure.Error())
	default:
		s.metrics.StoreError("internal")
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
