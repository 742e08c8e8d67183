package billing

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for billing data access. All
// operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	CreateInvoice(ctx context.Context, schemaName string, invoice InvoiceResponse, items []InvoiceItemRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, schemaName string, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, schemaName string, filters ListFilters) ([]InvoiceResponse, error)
	ListItems(ctx context.Context, schemaName string, invoiceID string) ([]InvoiceItemResponse, error)
	ListPayments(ctx context.Context, schemaName string, invoiceID string) ([]PaymentResponse, error)
	SumPayments(ctx context.Context, schemaName string, invoiceID string) (int64, error)
	InsertPayment(ctx context.Context, schemaName string, payment PaymentResponse) (*PaymentResponse, error)
	SetStatus(ctx context.Context, schemaName string, id string, status string, issuedAt *time.Time) (*InvoiceResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
