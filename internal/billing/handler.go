package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/patient"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

// Handler exposes the billing endpoints. Patients may only read their own
// invoices and statement; the patient service resolves their record from the
// token subject.
type Handler struct {
	service  ServiceInterface
	patients patient.ServiceInterface
}

func NewHandler(service ServiceInterface, patients patient.ServiceInterface) *Handler {
	return &Handler{service: service, patients: patients}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

type ListResponse struct {
	Success  bool              `json:"success"`
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int               `json:"total"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	invoice, err := h.service.CreateInvoice(r.Context(), schemaName, clinicID, req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Invoice created successfully",
		Invoice: invoice,
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	filters := ListFilters{
		PatientID: r.URL.Query().Get("patient_id"),
		Status:    r.URL.Query().Get("status"),
	}

	if ownID, ok := h.restrictToOwnPatient(w, r, schemaName); !ok {
		return
	} else if ownID != "" {
		filters.PatientID = ownID
	}

	invoices, err := h.service.ListInvoices(r.Context(), schemaName, filters)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if invoices == nil {
		invoices = []InvoiceResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success:  true,
		Invoices: invoices,
		Total:    len(invoices),
	})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	invoice, err := h.service.GetInvoice(r.Context(), schemaName, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	if ownID, ok := h.restrictToOwnPatient(w, r, schemaName); !ok {
		return
	} else if ownID != "" && ownID != invoice.PatientID {
		respondError(w, http.StatusForbidden, "forbidden", "Invoice belongs to another patient")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Invoice retrieved successfully",
		Invoice: invoice,
	})
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "Invoice issued", h.service.IssueInvoice)
}

func (h *Handler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "Invoice voided", h.service.VoidInvoice)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	invoice, err := h.service.RecordPayment(r.Context(), schemaName, clinicID, mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, err, "payment_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Payment recorded successfully",
		Invoice: invoice,
	})
}

// Statement serves a patient's billing statement. Patients get their own;
// staff pass the patient ID in the path.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	patientID := mux.Vars(r)["patientId"]
	if ownID, ok := h.restrictToOwnPatient(w, r, schemaName); !ok {
		return
	} else if ownID != "" {
		patientID = ownID
	}
	if patientID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Patient ID is required")
		return
	}

	statement, err := h.service.Statement(r.Context(), schemaName, patientID)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statement)
}

func (h *Handler) statusChange(w http.ResponseWriter, r *http.Request, message string, op func(ctx context.Context, schemaName, clinicID, id string) (*InvoiceResponse, error)) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	invoice, err := op(r.Context(), schemaName, clinicID, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, "status_change_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: message,
		Invoice: invoice,
	})
}

// restrictToOwnPatient returns the caller's own patient ID when the caller is
// a patient, empty string for staff. The bool is false when a response was
// already written.
func (h *Handler) restrictToOwnPatient(w http.ResponseWriter, r *http.Request, schemaName string) (string, bool) {
	principal, ok := auth.FromContext(r.Context())
	if !ok || !principal.HasRole("PATIENT") {
		return "", true
	}

	own, err := h.patients.GetMyPatient(r.Context(), schemaName, principal.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
		return "", false
	}
	return own.ID, true
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPatientNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrNotDraft),
		errors.Is(err, ErrNotIssued),
		errors.Is(err, ErrNotVoidable),
		errors.Is(err, ErrOverpayment):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, ErrNoItems),
		errors.Is(err, ErrBadItem),
		errors.Is(err, ErrBadPaymentAmount),
		errors.Is(err, ErrMissingMethod):
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
