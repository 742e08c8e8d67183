package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
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

type SuccessResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Item    *ItemResponse `json:"item,omitempty"`
}

type ListResponse struct {
	Success bool           `json:"success"`
	Items   []ItemResponse `json:"items"`
	Total   int            `json:"total"`
}

type AdjustmentListResponse struct {
	Success     bool                 `json:"success"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	Total       int                  `json:"total"`
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	item, err := h.service.CreateItem(r.Context(), schemaName, req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Inventory item created successfully",
		Item:    item,
	})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	if r.URL.Query().Get("page") != "" || r.URL.Query().Get("limit") != "" || r.URL.Query().Get("search") != "" {
		params := pagination.ParseParams(r)
		search := r.URL.Query().Get("search")

		resp, err := h.service.ListItemsWithPagination(r.Context(), schemaName, params, search)
		if err != nil {
			respondServiceError(w, err, "fetch_failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	items, err := h.service.ListItems(r.Context(), schemaName)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if items == nil {
		items = []ItemResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success: true,
		Items:   items,
		Total:   len(items),
	})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	item, err := h.service.GetItem(r.Context(), schemaName, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Inventory item retrieved successfully",
		Item:    item,
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	item, err := h.service.UpdateItem(r.Context(), schemaName, mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, err, "update_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Inventory item updated successfully",
		Item:    item,
	})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	if err := h.service.DeleteItem(r.Context(), schemaName, mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}
	clinicID, _ := tenant.ClinicIDFromContext(r.Context())

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	adjustedBy := ""
	if principal, ok := auth.FromContext(r.Context()); ok {
		adjustedBy = principal.UserID
	}

	item, err := h.service.AdjustStock(r.Context(), schemaName, clinicID, mux.Vars(r)["id"], req, adjustedBy)
	if err != nil {
		respondServiceError(w, err, "adjustment_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: "Stock adjusted successfully",
		Item:    item,
	})
}

func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	schemaName, ok := tenant.SchemaFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context")
		return
	}

	adjustments, err := h.service.ListAdjustments(r.Context(), schemaName, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	if adjustments == nil {
		adjustments = []AdjustmentResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AdjustmentListResponse{
		Success:     true,
		Adjustments: adjustments,
		Total:       len(adjustments),
	})
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrDuplicateSKU):
		respondError(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, ErrNegativeQuantity):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, ErrMissingName),
		errors.Is(err, ErrMissingSKU),
		errors.Is(err, ErrZeroDelta):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case strings.Contains(err.Error(), "no fields"),
		strings.Contains(err.Error(), "must be"):
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
