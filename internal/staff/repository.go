package staff

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const staffColumns = `id, subject, first_name, last_name, email, phone_number, role, specialty, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateStaff(ctx context.Context, schemaName string, req CreateStaffRequest) (*StaffResponse, error) {
	staffID := uuid.New()
	createdAt := time.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s.staff
		(id, subject, first_name, last_name, email, phone_number, role, specialty, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9)
		RETURNING `+staffColumns+`
	`, pq.QuoteIdentifier(schemaName))

	row := r.db.QueryRowContext(ctx, query,
		staffID,
		nullable(req.Subject),
		req.FirstName,
		req.LastName,
		req.Email,
		nullable(req.PhoneNumber),
		req.Role,
		nullable(req.Specialty),
		createdAt,
	)

	member, err := scanStaff(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert staff member: %w", err)
	}

	return member, nil
}

// ListStaff lists active staff, optionally filtered by role. Used with
// RoleDentist to feed the booking dentist picker.
func (r *Repository) ListStaff(ctx context.Context, schemaName string, role string) ([]StaffResponse, error) {
	schema := pq.QuoteIdentifier(schemaName)

	query := fmt.Sprintf(`
		SELECT `+staffColumns+`
		FROM %s.staff
		WHERE deleted_at IS NULL
	`, schema)
	args := []interface{}{}

	if role != "" {
		query += " AND role = $1 AND is_active = true"
		args = append(args, role)
	}
	query += " ORDER BY last_name, first_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	return collectStaff(rows)
}

// ListStaffWithPagination retrieves staff with pagination and optional
// name/email search and role filter.
func (r *Repository) ListStaffWithPagination(ctx context.Context, schemaName string, limit, offset int, search, role string) ([]StaffResponse, int, error) {
	schema := pq.QuoteIdentifier(schemaName)

	whereClause := "WHERE deleted_at IS NULL"
	countArgs := []interface{}{}
	argIndex := 1

	if search != "" {
		whereClause += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex, argIndex)
		countArgs = append(countArgs, "%"+search+"%")
		argIndex++
	}
	if role != "" {
		whereClause += fmt.Sprintf(" AND role = $%d", argIndex)
		countArgs = append(countArgs, role)
		argIndex++
	}

	var totalCount int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.staff %s", schema, whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count staff: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+staffColumns+`
		FROM %s.staff
		%s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d
	`, schema, whereClause, argIndex, argIndex+1)

	args := append(countArgs, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	members, err := collectStaff(rows)
	if err != nil {
		return nil, 0, err
	}
	return members, totalCount, nil
}

func (r *Repository) GetStaff(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+staffColumns+`
		FROM %s.staff
		WHERE id = $1 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	member, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query staff member: %w", err)
	}
	return member, nil
}

// GetStaffBySubject resolves the staff record linked to an identity provider
// subject, used by the staff portal "me" endpoints.
func (r *Repository) GetStaffBySubject(ctx context.Context, schemaName string, subject string) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+staffColumns+`
		FROM %s.staff
		WHERE subject = $1 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	member, err := scanStaff(r.db.QueryRowContext(ctx, query, subject))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query staff member: %w", err)
	}
	return member, nil
}

func (r *Repository) UpdateStaff(ctx context.Context, schemaName string, id string, req UpdateStaffRequest) (*StaffResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.PhoneNumber != nil {
		set("phone_number", *req.PhoneNumber)
	}
	if req.Specialty != nil {
		set("specialty", *req.Specialty)
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE %s.staff
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING `+staffColumns+`
	`, pq.QuoteIdentifier(schemaName), strings.Join(updates, ", "), argIndex)

	member, err := scanStaff(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return member, nil
}

func (r *Repository) ChangeRole(ctx context.Context, schemaName string, id string, role string) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		UPDATE %s.staff
		SET role = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING `+staffColumns+`
	`, pq.QuoteIdentifier(schemaName))

	member, err := scanStaff(r.db.QueryRowContext(ctx, query, role, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}
	return member, nil
}

func (r *Repository) SetActive(ctx context.Context, schemaName string, id string, active bool) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		UPDATE %s.staff
		SET is_active = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING `+staffColumns+`
	`, pq.QuoteIdentifier(schemaName))

	member, err := scanStaff(r.db.QueryRowContext(ctx, query, active, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set active flag: %w", err)
	}
	return member, nil
}

func (r *Repository) DeleteStaff(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s.staff
		SET deleted_at = $1, is_active = false
		WHERE id = $2 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaffNotFound
	}

	return nil
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

func scanStaff(row rowScanner) (*StaffResponse, error) {
	var member StaffResponse
	var subject, phoneNumber, specialty sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&member.ID,
		&subject,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&phoneNumber,
		&member.Role,
		&specialty,
		&member.IsActive,
		&member.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	member.Subject = subject.String
	member.PhoneNumber = phoneNumber.String
	member.Specialty = specialty.String
	if updatedAt.Valid {
		member.UpdatedAt = &updatedAt.Time
	}

	return &member, nil
}

func collectStaff(rows *sql.Rows) ([]StaffResponse, error) {
	var members []StaffResponse
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}
	return members, nil
}
