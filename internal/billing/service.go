package billing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

// ServiceInterface defines the contract for billing business logic.
type ServiceInterface interface {
	CreateInvoice(ctx context.Context, schemaName, clinicID string, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, schemaName string, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, schemaName string, filters ListFilters) ([]InvoiceResponse, error)
	IssueInvoice(ctx context.Context, schemaName, clinicID string, id string) (*InvoiceResponse, error)
	VoidInvoice(ctx context.Context, schemaName, clinicID string, id string) (*InvoiceResponse, error)
	RecordPayment(ctx context.Context, schemaName, clinicID string, id string, req RecordPaymentRequest) (*InvoiceResponse, error)
	Statement(ctx context.Context, schemaName string, patientID string) (*StatementResponse, error)
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// CreateInvoice creates a draft invoice. The total is computed from the line
// items, never taken from the client.
func (s *Service) CreateInvoice(ctx context.Context, schemaName, clinicID string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if req.PatientID == "" {
		return nil, ErrPatientNotFound
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	var total int64
	for _, item := range req.Items {
		if item.Description == "" || item.Quantity <= 0 || item.UnitPriceCents < 0 {
			return nil, ErrBadItem
		}
		total += int64(item.Quantity) * item.UnitPriceCents
	}

	invoice := InvoiceResponse{
		ID:            uuid.New().String(),
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Status:        StatusDraft,
		TotalCents:    total,
	}

	created, err := s.repo.CreateInvoice(ctx, schemaName, invoice, req.Items)
	if err != nil {
		return nil, err
	}
	created.BalanceCents = created.TotalCents

	if s.metrics != nil {
		s.metrics.RecordInvoiceOperation(ctx, "create")
	}
	return created, nil
}

// GetInvoice returns the invoice with its items, payments and balance.
func (s *Service) GetInvoice(ctx context.Context, schemaName string, id string) (*InvoiceResponse, error) {
	invoice, err := s.repo.GetInvoice(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, schemaName, invoice)
}

// ListInvoices returns invoices with balances but without line items.
func (s *Service) ListInvoices(ctx context.Context, schemaName string, filters ListFilters) ([]InvoiceResponse, error) {
	invoices, err := s.repo.ListInvoices(ctx, schemaName, filters)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		paid, err := s.repo.SumPayments(ctx, schemaName, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].PaidCents = paid
		invoices[i].BalanceCents = invoices[i].TotalCents - paid
	}
	return invoices, nil
}

// IssueInvoice moves a draft to issued and publishes the event.
func (s *Service) IssueInvoice(ctx context.Context, schemaName, clinicID string, id string) (*InvoiceResponse, error) {
	invoice, err := s.repo.GetInvoice(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	now := time.Now()
	updated, err := s.repo.SetStatus(ctx, schemaName, id, StatusIssued, &now)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceOperation(ctx, "issue")
	}
	s.publishInvoiceEvent(ctx, messaging.EventInvoiceIssued, clinicID, updated, 0)
	return s.hydrate(ctx, schemaName, updated)
}

// VoidInvoice voids a draft or an issued invoice with no payments against it.
func (s *Service) VoidInvoice(ctx context.Context, schemaName, clinicID string, id string) (*InvoiceResponse, error) {
	invoice, err := s.repo.GetInvoice(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusDraft && invoice.Status != StatusIssued {
		return nil, ErrNotVoidable
	}
	paid, err := s.repo.SumPayments(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if paid > 0 {
		return nil, ErrNotVoidable
	}

	updated, err := s.repo.SetStatus(ctx, schemaName, id, StatusVoid, nil)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceOperation(ctx, "void")
	}
	s.publishInvoiceEvent(ctx, messaging.EventInvoiceVoided, clinicID, updated, 0)
	return s.hydrate(ctx, schemaName, updated)
}

// RecordPayment records money against an issued invoice. Paying the full
// balance flips the invoice to paid and publishes invoice.paid.
func (s *Service) RecordPayment(ctx context.Context, schemaName, clinicID string, id string, req RecordPaymentRequest) (*InvoiceResponse, error) {
	if req.AmountCents <= 0 {
		return nil, ErrBadPaymentAmount
	}
	if req.Method == "" {
		return nil, ErrMissingMethod
	}

	invoice, err := s.repo.GetInvoice(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusIssued {
		return nil, ErrNotIssued
	}

	paid, err := s.repo.SumPayments(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if paid+req.AmountCents > invoice.TotalCents {
		return nil, ErrOverpayment
	}

	payment := PaymentResponse{
		ID:          uuid.New().String(),
		InvoiceID:   id,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Reference:   req.Reference,
	}
	if _, err := s.repo.InsertPayment(ctx, schemaName, payment); err != nil {
		return nil, err
	}

	paid += req.AmountCents
	if s.metrics != nil {
		s.metrics.RecordInvoiceOperation(ctx, "payment")
	}

	if paid == invoice.TotalCents {
		updated, err := s.repo.SetStatus(ctx, schemaName, id, StatusPaid, nil)
		if err != nil {
			return nil, fmt.Errorf("payment recorded but failed to mark invoice paid: %w", err)
		}
		s.publishInvoiceEvent(ctx, messaging.EventInvoicePaid, clinicID, updated, paid)
		return s.hydrate(ctx, schemaName, updated)
	}

	return s.hydrate(ctx, schemaName, invoice)
}

// Statement aggregates a patient's invoices and balances. Void invoices are
// excluded.
func (s *Service) Statement(ctx context.Context, schemaName string, patientID string) (*StatementResponse, error) {
	invoices, err := s.ListInvoices(ctx, schemaName, ListFilters{PatientID: patientID})
	if err != nil {
		return nil, err
	}

	statement := StatementResponse{PatientID: patientID, Invoices: []InvoiceResponse{}}
	for _, invoice := range invoices {
		if invoice.Status == StatusVoid {
			continue
		}
		statement.Invoices = append(statement.Invoices, invoice)
		statement.TotalCents += invoice.TotalCents
		statement.PaidCents += invoice.PaidCents
	}
	statement.OutstandingCents = statement.TotalCents - statement.PaidCents
	return &statement, nil
}

// hydrate attaches items, payments and balance to an invoice.
func (s *Service) hydrate(ctx context.Context, schemaName string, invoice *InvoiceResponse) (*InvoiceResponse, error) {
	items, err := s.repo.ListItems(ctx, schemaName, invoice.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, schemaName, invoice.ID)
	if err != nil {
		return nil, err
	}

	invoice.Items = items
	invoice.Payments = payments
	invoice.PaidCents = 0
	for _, p := range payments {
		invoice.PaidCents += p.AmountCents
	}
	invoice.BalanceCents = invoice.TotalCents - invoice.PaidCents
	return invoice, nil
}

func (s *Service) publishInvoiceEvent(ctx context.Context, eventType, clinicID string, invoice *InvoiceResponse, paidCents int64) {
	if s.publisher == nil {
		return
	}

	event := messaging.InvoiceEvent{
		BaseEvent: messaging.NewBaseEvent(eventType),
		Data: messaging.InvoiceEventData{
			InvoiceID:  invoice.ID,
			ClinicID:   clinicID,
			PatientID:  invoice.PatientID,
			TotalCents: invoice.TotalCents,
			PaidCents:  paidCents,
			Status:     invoice.Status,
			ChangedAt:  time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for invoice %s: %v", eventType, invoice.ID, err)
	}
}
