package clinic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
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

type SuccessResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Clinic  *ClinicResponse `json:"clinic,omitempty"`
}

type ListResponse struct {
	Success bool             `json:"success"`
	Clinics []ClinicResponse `json:"clinics"`
	Total   int              `json:"total"`
}

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	_, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Clinic name is required")
		return
	}

	clinic, err := h.service.CreateClinic(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			respondError(w, http.StatusConflict, "duplicate", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Clinic created successfully with dedicated schema",
		Clinic:  clinic,
	})
}

func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	// paginated listing when pagination params are present
	if r.URL.Query().Get("page") != "" || r.URL.Query().Get("limit") != "" {
		params := pagination.ParseParams(r)
		search := r.URL.Query().Get("search")
		status := r.URL.Query().Get("status")

		resp, err := h.service.ListClinicsWithPagination(r.Context(), params, search, status)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	clinics, err := h.service.ListClinics(r.Context(), principal)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success: true,
		Clinics: clinics,
		Total:   len(clinics),
	})
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Clinic ID is required")
		return
	}

	clinic, err := h.service.GetClinic(r.Context(), id, principal)
	if err != nil {
		if strings.Contains(err.Error(), "forbidden") {
			respondError(w, http.StatusForbidden, "forbidden", "You don't have permission to view this clinic")
			return
		}
		respondError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Clinic retrieved successfully",
		Clinic:  clinic,
	})
}

func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Clinic ID is required")
		return
	}

	var req UpdateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	clinic, err := h.service.UpdateClinic(r.Context(), id, req, principal)
	if err != nil {
		if strings.Contains(err.Error(), "forbidden") {
			respondError(w, http.StatusForbidden, "forbidden", "You don't have permission to update this clinic")
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
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Clinic updated successfully",
		Clinic:  clinic,
	})
}

func (h *Handler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	_, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Clinic ID is required")
		return
	}

	err := h.service.DeleteClinic(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "deletion_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
