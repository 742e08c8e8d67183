package availability

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
	"github.com/gorilla/mux"
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

func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	var req CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	window, err := h.service.CreateWindow(r.Context(), schemaName, req)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if strings.Contains(err.Error(), "overlaps") {
			respondError(w, http.StatusConflict, "overlap", err.Error())
			return
		}
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"window":  window,
	})
}

func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	dentistID := r.URL.Query().Get("dentist_id")

	windows, err := h.service.ListWindows(r.Context(), schemaName, dentistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"windows": windows,
		"total":   len(windows),
	})
}

func (h *Handler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]

	var req UpdateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	window, err := h.service.UpdateWindow(r.Context(), schemaName, id, req)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"window":  window,
	})
}

func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.service.DeleteWindow(r.Context(), schemaName, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "deletion_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBlockedSlot(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateBlockedSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	slot, err := h.service.CreateBlockedSlot(r.Context(), schemaName, principal.UserID, req)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"blocked_slot": slot,
	})
}

func (h *Handler) ListBlockedSlots(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	dentistID := r.URL.Query().Get("dentist_id")

	from := time.Now()
	to := from.AddDate(0, 1, 0)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}

	slots, err := h.service.ListBlockedSlots(r.Context(), schemaName, dentistID, from, to)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":       true,
		"blocked_slots": slots,
		"total":         len(slots),
	})
}

func (h *Handler) DeleteBlockedSlot(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.service.DeleteBlockedSlot(r.Context(), schemaName, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "deletion_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "must be") || strings.Contains(msg, "is required")
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
