package patient

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
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

type SuccessResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Patient *PatientResponse `json:"patient,omitempty"`
}

type ListResponse struct {
	Success  bool              `json:"success"`
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	patient, err := h.service.CreatePatient(r.Context(), schemaName, clinicID, req)
	if err != nil {
		if strings.Contains(err.Error(), "is required") || strings.Contains(err.Error(), "must be") {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
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
		Message: "Patient created successfully",
		Patient: patient,
	})
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	if r.URL.Query().Get("page") != "" || r.URL.Query().Get("limit") != "" || r.URL.Query().Get("search") != "" {
		params := pagination.ParseParams(r)
		search := r.URL.Query().Get("search")

		resp, err := h.service.ListPatientsWithPagination(r.Context(), schemaName, params, search)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	patients, err := h.service.ListPatients(r.Context(), schemaName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success:  true,
		Patients: patients,
		Total:    len(patients),
	})
}

// ListActivePatients serves the booking UIs, which only offer active patients.
func (h *Handler) ListActivePatients(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	patients, err := h.service.ListActivePatients(r.Context(), schemaName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success:  true,
		Patients: patients,
		Total:    len(patients),
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Patient ID is required")
		return
	}

	patient, err := h.service.GetPatient(r.Context(), schemaName, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Patient retrieved successfully",
		Patient: patient,
	})
}

// GetMyPatient serves the patient portal profile, resolved from the token
// subject rather than a path parameter.
func (h *Handler) GetMyPatient(w http.ResponseWriter, r *http.Request) {
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

	patient, err := h.service.GetMyPatient(r.Context(), schemaName, principal.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Patient retrieved successfully",
		Patient: patient,
	})
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Patient ID is required")
		return
	}

	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	patient, err := h.service.UpdatePatient(r.Context(), schemaName, id, req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		if strings.Contains(err.Error(), "must be") || strings.Contains(err.Error(), "no fields") {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Patient updated successfully",
		Patient: patient,
	})
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Patient ID is required")
		return
	}

	err := h.service.DeletePatient(r.Context(), schemaName, clinicID, id)
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
