package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/BrightSmileDental/clinic-service/internal/db"
)

const appointmentColumns = `id, patient_id, dentist_id, date, start_time, end_time, status, service_name, notes, proposed_date, proposed_start_time, proposed_end_time, request_reason, cancellation_reason, cancelled_at, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) executor(ctx context.Context) db.Executor {
	return db.ExecutorFromContext(ctx, r.db)
}

func (r *Repository) Insert(ctx context.Context, schemaName string, appt AppointmentResponse) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s.appointments
		(id, patient_id, dentist_id, date, start_time, end_time, status, service_name, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+appointmentColumns+`
	`, pq.QuoteIdentifier(schemaName))

	row := r.executor(ctx).QueryRowContext(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.DentistID,
		appt.Date,
		appt.StartTime,
		appt.EndTime,
		appt.Status,
		nullable(appt.ServiceName),
		nullable(appt.Notes),
		time.Now(),
	)

	created, err := scanAppointment(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, fmt.Errorf("patient or dentist not found")
		}
		// exclusion violations surface through the transaction manager
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, schemaName string, id string) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+appointmentColumns+`
		FROM %s.appointments
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	appt, err := scanAppointment(r.executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) List(ctx context.Context, schemaName string, filters ListFilters) ([]AppointmentResponse, error) {
	builder := psql.
		Select(appointmentColumns).
		From(fmt.Sprintf("%s.appointments", pq.QuoteIdentifier(schemaName))).
		OrderBy("date", "start_time")

	if filters.PatientID != "" {
		builder = builder.Where(sq.Eq{"patient_id": filters.PatientID})
	}
	if filters.DentistID != "" {
		builder = builder.Where(sq.Eq{"dentist_id": filters.DentistID})
	}
	if filters.Status != "" {
		builder = builder.Where(sq.Eq{"status": filters.Status})
	}
	if filters.From != "" {
		builder = builder.Where(sq.GtOrEq{"date": filters.From})
	}
	if filters.To != "" {
		builder = builder.Where(sq.LtOrEq{"date": filters.To})
	}
	if filters.Limit > 0 {
		builder = builder.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment query: %w", err)
	}

	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// ListActiveForDentistDate returns the slot-occupying appointments for one
// dentist on one date, feeding slot computation.
func (r *Repository) ListActiveForDentistDate(ctx context.Context, schemaName string, dentistID string, date string) ([]AppointmentResponse, error) {
	query, args, err := psql.
		Select(appointmentColumns).
		From(fmt.Sprintf("%s.appointments", pq.QuoteIdentifier(schemaName))).
		Where(sq.Eq{"dentist_id": dentistID, "date": date, "status": ActiveStatuses}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment query: %w", err)
	}

	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// CountOverlapping counts active appointments intersecting [startTime,
// endTime) with strict inequalities, so back-to-back bookings do not collide.
// Runs on the serializable transaction during booking.
func (r *Repository) CountOverlapping(ctx context.Context, schemaName string, dentistID, date, startTime, endTime, excludeID string) (int, error) {
	builder := psql.
		Select("COUNT(*)").
		From(fmt.Sprintf("%s.appointments", pq.QuoteIdentifier(schemaName))).
		Where(sq.Eq{"dentist_id": dentistID, "date": date, "status": ActiveStatuses}).
		Where(sq.Lt{"start_time": endTime}).
		Where(sq.Gt{"end_time": startTime})

	if excludeID != "" {
		builder = builder.Where(sq.NotEq{"id": excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build overlap query: %w", err)
	}

	var count int
	if err := r.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overlapping appointments: %w", err)
	}
	return count, nil
}

// Update applies the given column values and returns the updated row.
func (r *Repository) Update(ctx context.Context, schemaName string, id string, fields map[string]interface{}) (*AppointmentResponse, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	builder := psql.
		Update(fmt.Sprintf("%s.appointments", pq.QuoteIdentifier(schemaName))).
		SetMap(fields).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + appointmentColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	appt, err := scanAppointment(r.executor(ctx).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// MarkMissed flips past-due confirmed appointments to missed and returns
// them, so the sweeper can publish one event per appointment. Pending
// appointments are left alone: they are awaiting staff triage, not a patient.
func (r *Repository) MarkMissed(ctx context.Context, schemaName string, now time.Time) ([]AppointmentResponse, error) {
	query := fmt.Sprintf(`
		UPDATE %s.appointments
		SET status = '%s', updated_at = $1
		WHERE status = '%s'
		AND (date + end_time) < $2
		RETURNING `+appointmentColumns+`
	`, pq.QuoteIdentifier(schemaName), StatusMissed, StatusConfirmed)

	rows, err := r.executor(ctx).QueryContext(ctx, query, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark missed appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
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

func scanAppointment(row rowScanner) (*AppointmentResponse, error) {
	var appt AppointmentResponse
	var date time.Time
	var startTime, endTime string
	var serviceName, notes sql.NullString
	var proposedDate sql.NullTime
	var proposedStart, proposedEnd sql.NullString
	var requestReason, cancellationReason sql.NullString
	var cancelledAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DentistID,
		&date,
		&startTime,
		&endTime,
		&appt.Status,
		&serviceName,
		&notes,
		&proposedDate,
		&proposedStart,
		&proposedEnd,
		&requestReason,
		&cancellationReason,
		&cancelledAt,
		&appt.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Date = date.Format("2006-01-02")
	appt.StartTime = normalizeTime(startTime)
	appt.EndTime = normalizeTime(endTime)
	appt.ServiceName = serviceName.String
	appt.Notes = notes.String
	if proposedDate.Valid {
		appt.ProposedDate = proposedDate.Time.Format("2006-01-02")
	}
	if proposedStart.Valid {
		appt.ProposedStartTime = normalizeTime(proposedStart.String)
	}
	if proposedEnd.Valid {
		appt.ProposedEndTime = normalizeTime(proposedEnd.String)
	}
	appt.RequestReason = requestReason.String
	appt.CancellationReason = cancellationReason.String
	if cancelledAt.Valid {
		appt.CancelledAt = &cancelledAt.Time
	}
	if updatedAt.Valid {
		appt.UpdatedAt = &updatedAt.Time
	}

	return &appt, nil
}

// normalizeTime trims Postgres TIME values ("09:00:00") to HH:MM.
func normalizeTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func collectAppointments(rows *sql.Rows) ([]AppointmentResponse, error) {
	var appts []AppointmentResponse
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}
	return appts, nil
}
