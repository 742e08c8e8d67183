package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const invoiceColumns = `id, patient_id, appointment_id, status, total_cents, issued_at, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// CreateInvoice inserts the invoice and its line items in one transaction.
func (r *Repository) CreateInvoice(ctx context.Context, schemaName string, invoice InvoiceResponse, items []InvoiceItemRequest) (*InvoiceResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s.invoices (id, patient_id, appointment_id, status, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+invoiceColumns+`
	`, pq.QuoteIdentifier(schemaName))

	created, err := scanInvoice(tx.QueryRowContext(ctx, query,
		invoice.ID,
		invoice.PatientID,
		nullable(invoice.AppointmentID),
		invoice.Status,
		invoice.TotalCents,
		time.Now(),
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	itemQuery := fmt.Sprintf(`
		INSERT INTO %s.invoice_items (id, invoice_id, description, quantity, unit_price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, description, quantity, unit_price_cents
	`, pq.QuoteIdentifier(schemaName))

	for _, item := range items {
		var line InvoiceItemResponse
		err = tx.QueryRowContext(ctx, itemQuery,
			uuid.New().String(),
			created.ID,
			item.Description,
			item.Quantity,
			item.UnitPriceCents,
			time.Now(),
		).Scan(&line.ID, &line.Description, &line.Quantity, &line.UnitPriceCents)
		if err != nil {
			return nil, fmt.Errorf("failed to insert invoice item: %w", err)
		}
		created.Items = append(created.Items, line)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

func (r *Repository) GetInvoice(ctx context.Context, schemaName string, id string) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+invoiceColumns+`
		FROM %s.invoices
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}
	return invoice, nil
}

func (r *Repository) ListInvoices(ctx context.Context, schemaName string, filters ListFilters) ([]InvoiceResponse, error) {
	builder := psql.
		Select(invoiceColumns).
		From(fmt.Sprintf("%s.invoices", pq.QuoteIdentifier(schemaName))).
		OrderBy("created_at DESC")

	if filters.PatientID != "" {
		builder = builder.Where(sq.Eq{"patient_id": filters.PatientID})
	}
	if filters.Status != "" {
		builder = builder.Where(sq.Eq{"status": filters.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []InvoiceResponse
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}

func (r *Repository) ListItems(ctx context.Context, schemaName string, invoiceID string) ([]InvoiceItemResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, description, quantity, unit_price_cents
		FROM %s.invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []InvoiceItemResponse
	for rows.Next() {
		var item InvoiceItemResponse
		if err := rows.Scan(&item.ID, &item.Description, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}
	return items, nil
}

func (r *Repository) ListPayments(ctx context.Context, schemaName string, invoiceID string) ([]PaymentResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, invoice_id, amount_cents, method, reference, received_at
		FROM %s.payments
		WHERE invoice_id = $1
		ORDER BY received_at
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []PaymentResponse
	for rows.Next() {
		var p PaymentResponse
		var reference sql.NullString
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Method, &reference, &p.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Reference = reference.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

func (r *Repository) SumPayments(ctx context.Context, schemaName string, invoiceID string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM %s.payments
		WHERE invoice_id = $1
	`, pq.QuoteIdentifier(schemaName))

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, invoiceID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return sum, nil
}

func (r *Repository) InsertPayment(ctx context.Context, schemaName string, payment PaymentResponse) (*PaymentResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s.payments (id, invoice_id, amount_cents, method, reference, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, invoice_id, amount_cents, method, reference, received_at
	`, pq.QuoteIdentifier(schemaName))

	var created PaymentResponse
	var reference sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		payment.ID,
		payment.InvoiceID,
		payment.AmountCents,
		payment.Method,
		nullable(payment.Reference),
		time.Now(),
	).Scan(&created.ID, &created.InvoiceID, &created.AmountCents, &created.Method, &reference, &created.ReceivedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}
	created.Reference = reference.String
	return &created, nil
}

func (r *Repository) SetStatus(ctx context.Context, schemaName string, id string, status string, issuedAt *time.Time) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		UPDATE %s.invoices
		SET status = $1, issued_at = COALESCE($2, issued_at), updated_at = $3
		WHERE id = $4
		RETURNING `+invoiceColumns+`
	`, pq.QuoteIdentifier(schemaName))

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, status, issuedAt, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return invoice, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*InvoiceResponse, error) {
	var invoice InvoiceResponse
	var appointmentID sql.NullString
	var issuedAt, updatedAt sql.NullTime

	err := row.Scan(
		&invoice.ID,
		&invoice.PatientID,
		&appointmentID,
		&invoice.Status,
		&invoice.TotalCents,
		&issuedAt,
		&invoice.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.AppointmentID = appointmentID.String
	if issuedAt.Valid {
		invoice.IssuedAt = &issuedAt.Time
	}
	if updatedAt.Valid {
		invoice.UpdatedAt = &updatedAt.Time
	}
	return &invoice, nil
}
