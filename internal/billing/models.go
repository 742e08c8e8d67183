package billing

import "time"

// Invoice statuses.
const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// InvoiceItemRequest is one line on a new invoice.
type InvoiceItemRequest struct {
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CreateInvoiceRequest creates a draft invoice with its line items.
type CreateInvoiceRequest struct {
	PatientID     string               `json:"patient_id"`
	AppointmentID string               `json:"appointment_id,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
}

// RecordPaymentRequest records money received against an issued invoice.
type RecordPaymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"` // cash, card, insurance, transfer
	Reference   string `json:"reference,omitempty"`
}

// InvoiceItemResponse represents one invoice line
type InvoiceItemResponse struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// PaymentResponse represents one recorded payment
type PaymentResponse struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

// InvoiceResponse represents the invoice data returned to clients. PaidCents
// and BalanceCents are derived from the payments.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	PatientID     string                `json:"patient_id"`
	AppointmentID string                `json:"appointment_id,omitempty"`
	Status        string                `json:"status"`
	TotalCents    int64                 `json:"total_cents"`
	PaidCents     int64                 `json:"paid_cents"`
	BalanceCents  int64                 `json:"balance_cents"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	Payments      []PaymentResponse     `json:"payments,omitempty"`
	IssuedAt      *time.Time            `json:"issued_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     *time.Time            `json:"updated_at,omitempty"`
}

// ListFilters narrows invoice listings.
type ListFilters struct {
	PatientID string
	Status    string
}

// StatementResponse is a patient's billing statement.
type StatementResponse struct {
	PatientID        string            `json:"patient_id"`
	Invoices         []InvoiceResponse `json:"invoices"`
	TotalCents       int64             `json:"total_cents"`
	PaidCents        int64             `json:"paid_cents"`
	OutstandingCents int64             `json:"outstanding_cents"`
}
