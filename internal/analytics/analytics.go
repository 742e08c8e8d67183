package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var ErrBadRange = errors.New("from must not be after to")

// Summary is the owner dashboard aggregate for one clinic and date range.
type Summary struct {
	From                 string         `json:"from"`
	To                   string         `json:"to"`
	AppointmentsByStatus map[string]int `json:"appointments_by_status"`
	TotalAppointments    int            `json:"total_appointments"`
	RevenueCents         int64          `json:"revenue_cents"`
	OutstandingCents     int64          `json:"outstanding_cents"`
	NewPatients          int            `json:"new_patients"`
	LowStockItems        int            `json:"low_stock_items"`
}

// RepositoryInterface defines the read-only aggregate queries.
type RepositoryInterface interface {
	AppointmentCounts(ctx context.Context, schemaName string, from, to time.Time) (map[string]int, error)
	RevenueCents(ctx context.Context, schemaName string, from, to time.Time) (int64, error)
	OutstandingCents(ctx context.Context, schemaName string) (int64, error)
	NewPatients(ctx context.Context, schemaName string, from, to time.Time) (int, error)
	LowStockItems(ctx context.Context, schemaName string) (int, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

func (r *Repository) AppointmentCounts(ctx context.Context, schemaName string, from, to time.Time) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT status, COUNT(*)
		FROM %s.appointments
		WHERE date >= $1 AND date <= $2
		GROUP BY status
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan appointment count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointment counts: %w", err)
	}
	return counts, nil
}

func (r *Repository) RevenueCents(ctx context.Context, schemaName string, from, to time.Time) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM %s.payments
		WHERE received_at >= $1 AND received_at < $2
	`, pq.QuoteIdentifier(schemaName))

	var revenue int64
	// the upper bound is exclusive, so pass the day after "to"
	if err := r.db.QueryRowContext(ctx, query, from, to.AddDate(0, 0, 1)).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}

// OutstandingCents is the unpaid remainder across all issued invoices,
// independent of the date range.
func (r *Repository) OutstandingCents(ctx context.Context, schemaName string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(i.total_cents - COALESCE(p.paid, 0)), 0)
		FROM %s.invoices i
		LEFT JOIN (
			SELECT invoice_id, SUM(amount_cents) AS paid
			FROM %s.payments
			GROUP BY invoice_id
		) p ON p.invoice_id = i.id
		WHERE i.status = 'issued'
	`, pq.QuoteIdentifier(schemaName), pq.QuoteIdentifier(schemaName))

	var outstanding int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&outstanding); err != nil {
		return 0, fmt.Errorf("failed to sum outstanding balance: %w", err)
	}
	return outstanding, nil
}

func (r *Repository) NewPatients(ctx context.Context, schemaName string, from, to time.Time) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.patients
		WHERE created_at >= $1 AND created_at < $2
	`, pq.QuoteIdentifier(schemaName))

	var count int
	if err := r.db.QueryRowContext(ctx, query, from, to.AddDate(0, 0, 1)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count new patients: %w", err)
	}
	return count, nil
}

func (r *Repository) LowStockItems(ctx context.Context, schemaName string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.inventory_items
		WHERE quantity <= reorder_threshold
	`, pq.QuoteIdentifier(schemaName))

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count low-stock items: %w", err)
	}
	return count, nil
}
