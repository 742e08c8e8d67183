package staff

import (
	"encoding/json"
	"errors"
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
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Staff   *StaffResponse `json:"staff,omitempty"`
}

type ListResponse struct {
	Success bool            `json:"success"`
	Staff   []StaffResponse `json:"staff"`
	Total   int             `json:"total"`
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	member, err := h.service.CreateStaff(r.Context(), schemaName, clinicID, req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Staff member created successfully",
		Staff:   member,
	})
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	role := r.URL.Query().Get("role")

	if r.URL.Query().Get("page") != "" || r.URL.Query().Get("limit") != "" || r.URL.Query().Get("search") != "" {
		params := pagination.ParseParams(r)
		search := r.URL.Query().Get("search")

		resp, err := h.service.ListStaffWithPagination(r.Context(), schemaName, params, search, role)
		if err != nil {
			respondServiceError(w, err, "fetch_failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	members, err := h.service.ListStaff(r.Context(), schemaName, role)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success: true,
		Staff:   members,
		Total:   len(members),
	})
}

// ListDentists serves the dentist picker for appointment booking. Any
// authenticated clinic user may call it, including patients.
func (h *Handler) ListDentists(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	dentists, err := h.service.ListDentists(r.Context(), schemaName)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success: true,
		Staff:   dentists,
		Total:   len(dentists),
	})
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Staff ID is required")
		return
	}

	member, err := h.service.GetStaff(r.Context(), schemaName, id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Staff member retrieved successfully",
		Staff:   member,
	})
}

// GetMyStaff serves the staff portal profile, resolved from the token subject.
func (h *Handler) GetMyStaff(w http.ResponseWriter, r *http.Request) {
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

	member, err := h.service.GetMyStaff(r.Context(), schemaName, principal.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "No staff record linked to this account")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Staff member retrieved successfully",
		Staff:   member,
	})
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Staff ID is required")
		return
	}

	var req UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	member, err := h.service.UpdateStaff(r.Context(), schemaName, id, req)
	if err != nil {
		respondServiceError(w, err, "update_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Staff member updated successfully",
		Staff:   member,
	})
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Staff ID is required")
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	member, err := h.service.ChangeRole(r.Context(), schemaName, clinicID, id, req.Role)
	if err != nil {
		respondServiceError(w, err, "role_change_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Role changed successfully",
		Staff:   member,
	})
}

func (h *Handler) ActivateStaff(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "Staff member activated")
}

func (h *Handler) DeactivateStaff(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "Staff member deactivated")
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Staff ID is required")
		return
	}

	member, err := h.service.SetActive(r.Context(), schemaName, clinicID, id, active)
	if err != nil {
		respondServiceError(w, err, "status_change_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: message,
		Staff:   member,
	})
}

func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Staff ID is required")
		return
	}

	if err := h.service.DeleteStaff(r.Context(), schemaName, clinicID, id); err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrStaffNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrMissingEmail),
		errors.Is(err, ErrMissingFirstName),
		errors.Is(err, ErrMissingLastName),
		errors.Is(err, ErrMissingRole):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case strings.Contains(err.Error(), "no fields"):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fallbackType, err.Error())
	}
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
