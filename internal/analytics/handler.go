package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Summary serves the dashboard aggregates.
// GET /analytics/summary?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	summary, err := h.service.Summary(r.Context(), schemaName, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		if errors.Is(err, ErrBadRange) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
