package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
	"github.com/BrightSmileDental/clinic-service/internal/patient"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

// Handler exposes the appointment endpoints. It needs the patient service to
// resolve a patient's own record from the token subject, so patients can only
// book and manage their own appointments.
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
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
}

type ListResponse struct {
	Success      bool                  `json:"success"`
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotsResponse struct {
	Success   bool   `json:"success"`
	DentistID string `json:"dentist_id"`
	Date      string `json:"date"`
	Slots     []Slot `json:"slots"`
}

// AvailableSlots lists the open slots for a dentist on a date.
// GET /appointments/slots?dentist_id=...&date=YYYY-MM-DD&duration=30
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	h.serveSlots(w, r, r.URL.Query().Get("dentist_id"))
}

// DentistSlots is the path-parameter form of the same lookup.
// GET /dentists/{id}/slots?date=YYYY-MM-DD&duration=30
func (h *Handler) DentistSlots(w http.ResponseWriter, r *http.Request) {
	h.serveSlots(w, r, mux.Vars(r)["id"])
}

func (h *Handler) serveSlots(w http.ResponseWriter, r *http.Request, dentistID string) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	q := r.URL.Query()
	date := q.Get("date")

	duration := 0
	if raw := q.Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "duration must be a number of minutes")
			return
		}
		duration = parsed
	}

	slots, err := h.service.AvailableSlots(r.Context(), schemaName, dentistID, date, duration)
	if err != nil {
		respondServiceError(w, err, "slots_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SlotsResponse{
		Success:   true,
		DentistID: dentistID,
		Date:      date,
		Slots:     slots,
	})
}

// Book creates an appointment. Patients always book for themselves; the
// patient ID in the payload is ignored for them and resolved from the token.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if principal, ok := auth.FromContext(r.Context()); ok && principal.HasRole("PATIENT") {
		own, err := h.patients.GetMyPatient(r.Context(), schemaName, principal.UserID)
		if err != nil {
			respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
			return
		}
		req.PatientID = own.ID
	}

	appt, err := h.service.Book(r.Context(), schemaName, clinicID, req)
	if err != nil {
		respondServiceError(w, err, "booking_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:     true,
		Message:     "Appointment booked successfully",
		Appointment: appt,
	})
}

// List returns appointments matching the query filters. Patients only ever
// see their own.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	q := r.URL.Query()
	filters := ListFilters{
		PatientID: q.Get("patient_id"),
		DentistID: q.Get("dentist_id"),
		Status:    q.Get("status"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}
	if q.Get("page") != "" || q.Get("limit") != "" {
		params := pagination.ParseParams(r)
		filters.Limit = params.Limit
		filters.Offset = params.CalculateOffset()
	}

	if principal, ok := auth.FromContext(r.Context()); ok && principal.HasRole("PATIENT") {
		own, err := h.patients.GetMyPatient(r.Context(), schemaName, principal.UserID)
		if err != nil {
			respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
			return
		}
		filters.PatientID = own.ID
	}

	appts, err := h.service.List(r.Context(), schemaName, filters)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if appts == nil {
		appts = []AppointmentResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success:      true,
		Appointments: appts,
		Total:        len(appts),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	id := mux.Vars(r)["id"]
	appt, err := h.service.Get(r.Context(), schemaName, id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	if !h.authorizeOwnership(w, r, schemaName, appt) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:     true,
		Message:     "Appointment retrieved successfully",
		Appointment: appt,
	})
}

// Confirm moves a pending appointment to confirmed. Staff only, enforced by
// route permissions.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "Appointment confirmed",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.Confirm(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id)
		})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "Appointment completed",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.Complete(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id)
		})
}

// Cancel cancels immediately. Staff only; patients go through RequestCancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	reason := decodeReason(r)
	h.staffTransition(w, r, "Appointment cancelled",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.Cancel(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id, reason)
		})
}

// RequestReschedule lets a patient (or staff on their behalf) propose a new
// slot. Patients may only touch their own appointments.
func (h *Handler) RequestReschedule(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	appt, err := h.service.Get(r.Context(), schemaName, id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if !h.authorizeOwnership(w, r, schemaName, appt) {
		return
	}

	updated, err := h.service.RequestReschedule(r.Context(), schemaName, clinicID, id, req)
	if err != nil {
		respondServiceError(w, err, "reschedule_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:     true,
		Message:     "Reschedule requested",
		Appointment: updated,
	})
}

func (h *Handler) ApproveReschedule(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "Reschedule approved",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.ApproveReschedule(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id)
		})
}

func (h *Handler) RejectReschedule(w http.ResponseWriter, r *http.Request) {
	reason := decodeReason(r)
	h.staffTransition(w, r, "Reschedule rejected",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.RejectReschedule(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id, reason)
		})
}

// RequestCancel records a patient's cancellation request for staff review.
func (h *Handler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	reason := decodeReason(r)

	appt, err := h.service.Get(r.Context(), schemaName, id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if !h.authorizeOwnership(w, r, schemaName, appt) {
		return
	}

	updated, err := h.service.RequestCancel(r.Context(), schemaName, clinicID, id, reason)
	if err != nil {
		respondServiceError(w, err, "cancel_request_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:     true,
		Message:     "Cancellation requested",
		Appointment: updated,
	})
}

func (h *Handler) ApproveCancel(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "Cancellation approved",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.ApproveCancel(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id)
		})
}

func (h *Handler) RejectCancel(w http.ResponseWriter, r *http.Request) {
	reason := decodeReason(r)
	h.staffTransition(w, r, "Cancellation rejected",
		func(ctx ctxArgs) (*AppointmentResponse, error) {
			return h.service.RejectCancel(ctx.ctx, ctx.schema, ctx.clinicID, ctx.id, reason)
		})
}

type ctxArgs struct {
	ctx      context.Context
	schema   string
	clinicID string
	id       string
}

func (h *Handler) staffTransition(w http.ResponseWriter, r *http.Request, message string, op func(ctxArgs) (*AppointmentResponse, error)) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Appointment ID is required")
		return
	}

	appt, err := op(ctxArgs{ctx: r.Context(), schema: schemaName, clinicID: clinicID, id: id})
	if err != nil {
		respondServiceError(w, err, "transition_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:     true,
		Message:     message,
		Appointment: appt,
	})
}

// authorizeOwnership rejects patients touching appointments that are not
// theirs. Staff pass through.
func (h *Handler) authorizeOwnership(w http.ResponseWriter, r *http.Request, schemaName string, appt *AppointmentResponse) bool {
	principal, ok := auth.FromContext(r.Context())
	if !ok || !principal.HasRole("PATIENT") {
		return true
	}

	own, err := h.patients.GetMyPatient(r.Context(), schemaName, principal.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
		return false
	}
	if own.ID != appt.PatientID {
		respondError(w, http.StatusForbidden, "forbidden", "Appointment belongs to another patient")
		return false
	}
	return true
}

func decodeReason(r *http.Request) string {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Reason
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrSlotConflict):
		respondError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, ErrOutsideAvailability),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrTooShortNotice):
		respondError(w, http.StatusUnprocessableEntity, "not_bookable", err.Error())
	case errors.Is(err, ErrMissingPatient),
		errors.Is(err, ErrMissingDentist),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadTime),
		errors.Is(err, ErrBadDuration),
		errors.Is(err, ErrNoProposal):
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
