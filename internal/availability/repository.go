package availability

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateWindow(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error) {
	windowID := uuid.New()

	query := fmt.Sprintf(`
		INSERT INTO %s.availability_windows
		(id, dentist_id, start_date, end_date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, dentist_id, start_date, end_date, start_time, end_time, created_at, updated_at
	`, pq.QuoteIdentifier(schemaName))

	window, err := scanWindow(r.db.QueryRowContext(ctx, query,
		windowID,
		req.DentistID,
		req.StartDate,
		req.EndDate,
		req.StartTime,
		req.EndTime,
		time.Now(),
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, fmt.Errorf("dentist not found")
		}
		return nil, fmt.Errorf("failed to insert availability window: %w", err)
	}

	return window, nil
}

func (r *Repository) ListWindows(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error) {
	schema := pq.QuoteIdentifier(schemaName)

	query := fmt.Sprintf(`
		SELECT id, dentist_id, start_date, end_date, start_time, end_time, created_at, updated_at
		FROM %s.availability_windows
	`, schema)
	args := []interface{}{}

	if dentistID != "" {
		query += " WHERE dentist_id = $1"
		args = append(args, dentistID)
	}
	query += " ORDER BY start_date, start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability windows: %w", err)
	}
	defer rows.Close()

	return collectWindows(rows)
}

// ListWindowsForDate returns the windows covering one calendar date, which
// drive slot computation for that day.
func (r *Repository) ListWindowsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]WindowResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, dentist_id, start_date, end_date, start_time, end_time, created_at, updated_at
		FROM %s.availability_windows
		WHERE dentist_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_time
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, dentistID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query availability windows: %w", err)
	}
	defer rows.Close()

	return collectWindows(rows)
}

func (r *Repository) GetWindow(ctx context.Context, schemaName string, id string) (*WindowResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, dentist_id, start_date, end_date, start_time, end_time, created_at, updated_at
		FROM %s.availability_windows
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	window, err := scanWindow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("availability window not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query availability window: %w", err)
	}
	return window, nil
}

func (r *Repository) UpdateWindow(ctx context.Context, schemaName string, id string, req UpdateWindowRequest) (*WindowResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.StartDate != nil {
		set("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		set("end_date", *req.EndDate)
	}
	if req.StartTime != nil {
		set("start_time", *req.StartTime)
	}
	if req.EndTime != nil {
		set("end_time", *req.EndTime)
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE %s.availability_windows
		SET %s
		WHERE id = $%d
		RETURNING id, dentist_id, start_date, end_date, start_time, end_time, created_at, updated_at
	`, pq.QuoteIdentifier(schemaName), strings.Join(updates, ", "), argIndex)

	window, err := scanWindow(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("availability window not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update availability window: %w", err)
	}
	return window, nil
}

func (r *Repository) DeleteWindow(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s.availability_windows WHERE id = $1`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability window not found")
	}
	return nil
}

func (r *Repository) CreateBlockedSlot(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error) {
	slotID := uuid.New()

	var dentistID interface{}
	if req.DentistID != "" {
		dentistID = req.DentistID
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.blocked_slots
		(id, dentist_id, date, start_time, end_time, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, dentist_id, date, start_time, end_time, reason, created_by, created_at
	`, pq.QuoteIdentifier(schemaName))

	slot, err := scanBlockedSlot(r.db.QueryRowContext(ctx, query,
		slotID,
		dentistID,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.Reason,
		createdBy,
		time.Now(),
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, fmt.Errorf("dentist not found")
		}
		return nil, fmt.Errorf("failed to insert blocked slot: %w", err)
	}

	return slot, nil
}

func (r *Repository) ListBlockedSlots(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error) {
	schema := pq.QuoteIdentifier(schemaName)

	query := fmt.Sprintf(`
		SELECT id, dentist_id, date, start_time, end_time, reason, created_by, created_at
		FROM %s.blocked_slots
		WHERE date >= $1 AND date <= $2
	`, schema)
	args := []interface{}{from.Format("2006-01-02"), to.Format("2006-01-02")}

	if dentistID != "" {
		query += " AND (dentist_id = $3 OR dentist_id IS NULL)"
		args = append(args, dentistID)
	}
	query += " ORDER BY date, start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked slots: %w", err)
	}
	defer rows.Close()

	return collectBlockedSlots(rows)
}

// ListBlockedSlotsForDate returns blocks affecting a dentist on one date,
// including clinic-wide blocks (NULL dentist).
func (r *Repository) ListBlockedSlotsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]BlockedSlotResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, dentist_id, date, start_time, end_time, reason, created_by, created_at
		FROM %s.blocked_slots
		WHERE date = $1 AND (dentist_id = $2 OR dentist_id IS NULL)
		ORDER BY start_time
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, date.Format("2006-01-02"), dentistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked slots: %w", err)
	}
	defer rows.Close()

	return collectBlockedSlots(rows)
}

func (r *Repository) DeleteBlockedSlot(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s.blocked_slots WHERE id = $1`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("blocked slot not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWindow(row rowScanner) (*WindowResponse, error) {
	var window WindowResponse
	var startDate, endDate time.Time
	var startTime, endTime string
	var updatedAt sql.NullTime

	err := row.Scan(
		&window.ID,
		&window.DentistID,
		&startDate,
		&endDate,
		&startTime,
		&endTime,
		&window.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	window.StartDate = startDate.Format("2006-01-02")
	window.EndDate = endDate.Format("2006-01-02")
	window.StartTime = normalizeTime(startTime)
	window.EndTime = normalizeTime(endTime)
	if updatedAt.Valid {
		window.UpdatedAt = &updatedAt.Time
	}

	return &window, nil
}

func scanBlockedSlot(row rowScanner) (*BlockedSlotResponse, error) {
	var slot BlockedSlotResponse
	var dentistID, createdBy, reason sql.NullString
	var date time.Time
	var startTime, endTime string

	err := row.Scan(
		&slot.ID,
		&dentistID,
		&date,
		&startTime,
		&endTime,
		&reason,
		&createdBy,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.DentistID = dentistID.String
	slot.Reason = reason.String
	slot.CreatedBy = createdBy.String
	slot.Date = date.Format("2006-01-02")
	slot.StartTime = normalizeTime(startTime)
	slot.EndTime = normalizeTime(endTime)

	return &slot, nil
}

// normalizeTime trims Postgres TIME values ("09:00:00") to HH:MM.
func normalizeTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func collectWindows(rows *sql.Rows) ([]WindowResponse, error) {
	var windows []WindowResponse
	for rows.Next() {
		window, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability window: %w", err)
		}
		windows = append(windows, *window)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability windows: %w", err)
	}
	return windows, nil
}

func collectBlockedSlots(rows *sql.Rows) ([]BlockedSlotResponse, error) {
	var slots []BlockedSlotResponse
	for rows.Next() {
		slot, err := scanBlockedSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blocked slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocked slots: %w", err)
	}
	return slots, nil
}
