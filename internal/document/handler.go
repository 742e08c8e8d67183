package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/patient"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

// Handler exposes the document endpoints. Patients can list and download
// only their own documents; upload and delete are staff operations.
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
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Document *DocumentResponse `json:"document,omitempty"`
}

type ListResponse struct {
	Success   bool               `json:"success"`
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

// Upload stores a multipart file for a patient.
// POST /patients/{patientId}/documents with form field "file".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	patientID := mux.Vars(r)["patientId"]

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid multipart payload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Form field 'file' is required")
		return
	}
	defer file.Close()

	uploadedBy := ""
	if principal, ok := auth.FromContext(r.Context()); ok {
		uploadedBy = principal.UserID
	}

	doc, err := h.service.Upload(r.Context(), schemaName, patientID, header.Filename, header.Header.Get("Content-Type"), uploadedBy, file)
	if err != nil {
		respondServiceError(w, err, "upload_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success:  true,
		Message:  "Document uploaded successfully",
		Document: doc,
	})
}

// ListForPatient lists a patient's document metadata.
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	patientID := mux.Vars(r)["patientId"]
	if !h.authorizePatient(w, r, schemaName, patientID) {
		return
	}

	docs, err := h.service.ListForPatient(r.Context(), schemaName, patientID)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if docs == nil {
		docs = []DocumentResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success:   true,
		Documents: docs,
		Total:     len(docs),
	})
}

// Download streams the stored file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	doc, err := h.service.Download(r.Context(), schemaName, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	if !h.authorizePatient(w, r, schemaName, doc.PatientID) {
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Write(doc.Content)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	if err := h.service.Delete(r.Context(), schemaName, mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizePatient rejects patients reading another patient's documents.
func (h *Handler) authorizePatient(w http.ResponseWriter, r *http.Request, schemaName, patientID string) bool {
	principal, ok := auth.FromContext(r.Context())
	if !ok || !principal.HasRole("PATIENT") {
		return true
	}

	own, err := h.patients.GetMyPatient(r.Context(), schemaName, principal.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "No patient record linked to this account")
		return false
	}
	if own.ID != patientID {
		respondError(w, http.StatusForbidden, "forbidden", "Document belongs to another patient")
		return false
	}
	return true
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrPatientNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, ErrMissingFile):
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
