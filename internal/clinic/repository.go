package clinic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
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

// CreateClinic inserts the clinic row and provisions its tenant schema in one
// transaction. Schema DDL lives in the database function so migrations remain
// the single source of truth.
func (r *Repository) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	clinicID := uuid.New()
	schemaName := fmt.Sprintf("clinic_%s_%s", sanitizeName(req.Name), clinicID.String()[:8])

	var settingsJSON []byte
	if req.Settings != nil {
		settingsJSON, err = json.Marshal(req.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal settings: %w", err)
		}
	}

	query := `
        INSERT INTO dental.clinics
        (id, name, schema_name, contact_email, contact_phone, address, status, settings, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $8)
        RETURNING id, name, schema_name, contact_email, contact_phone, address, status, created_at
    `

	createdAt := time.Now()
	var clinic ClinicResponse
	var contactEmail, contactPhone, address sql.NullString

	err = tx.QueryRowContext(ctx, query,
		clinicID,
		req.Name,
		schemaName,
		req.ContactEmail,
		req.ContactPhone,
		req.Address,
		settingsJSON,
		createdAt,
	).Scan(
		&clinic.ID,
		&clinic.Name,
		&clinic.SchemaName,
		&contactEmail,
		&contactPhone,
		&address,
		&clinic.Status,
		&clinic.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("clinic with this name already exists")
		}
		return nil, fmt.Errorf("failed to insert clinic: %w", err)
	}

	if contactEmail.Valid {
		clinic.ContactEmail = contactEmail.String
	}
	if contactPhone.Valid {
		clinic.ContactPhone = contactPhone.String
	}
	if address.Valid {
		clinic.Address = address.String
	}
	clinic.Settings = req.Settings

	if _, err := tx.ExecContext(ctx, "SELECT dental.create_tenant_schema($1)", schemaName); err != nil {
		return nil, fmt.Errorf("failed to create tenant schema via database function: %w", err)
	}
	log.Printf("Created tenant schema '%s' via database function", schemaName)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &clinic, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")

	result := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}

	if result.Len() > 20 {
		return result.String()[:20]
	}
	return result.String()
}

func (r *Repository) ListClinics(ctx context.Context) ([]ClinicResponse, error) {
	query := `
		SELECT id, name, schema_name, contact_email, contact_phone, address, status, settings, created_at, updated_at
		FROM dental.clinics
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinics: %w", err)
	}
	defer rows.Close()

	var clinics []ClinicResponse
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, *clinic)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinics: %w", err)
	}

	return clinics, nil
}

// TenantRef identifies one active clinic and its tenant schema.
type TenantRef struct {
	ClinicID   string
	SchemaName string
}

// ListActiveTenants returns the schema references for every live clinic, for
// jobs that iterate all tenants.
func (r *Repository) ListActiveTenants(ctx context.Context) ([]TenantRef, error) {
	query := `
		SELECT id, schema_name
		FROM dental.clinics
		WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []TenantRef
	for rows.Next() {
		var t TenantRef
		if err := rows.Scan(&t.ClinicID, &t.SchemaName); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

// ListClinicsWithPagination retrieves clinics with pagination support
func (r *Repository) ListClinicsWithPagination(ctx context.Context, limit, offset int, search, status string) ([]ClinicResponse, int, error) {
	whereClause := "WHERE deleted_at IS NULL"
	countArgs := []interface{}{}
	argIndex := 1

	if search != "" {
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR contact_email ILIKE $%d)", argIndex, argIndex)
		countArgs = append(countArgs, "%"+search+"%")
		argIndex++
	}
	if status != "" && status != "all" {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		countArgs = append(countArgs, status)
		argIndex++
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM dental.clinics " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinics: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, schema_name, contact_email, contact_phone, address, status, settings, created_at, updated_at
		FROM dental.clinics
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args := append(countArgs, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clinics: %w", err)
	}
	defer rows.Close()

	var clinics []ClinicResponse
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		clinics = append(clinics, *clinic)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating clinics: %w", err)
	}

	return clinics, totalCount, nil
}

func (r *Repository) GetClinic(ctx context.Context, id string) (*ClinicResponse, error) {
	query := `
		SELECT id, name, schema_name, contact_email, contact_phone, address, status, settings, created_at, updated_at
		FROM dental.clinics
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)
	clinic, err := scanClinic(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("clinic not found")
	}
	if err != nil {
		return nil, err
	}
	return clinic, nil
}

// GetSchemaNameByClinicID resolves a clinic's tenant schema, used by the
// clinic-context middleware.
func (r *Repository) GetSchemaNameByClinicID(ctx context.Context, id string) (string, error) {
	var schemaName string
	err := r.db.QueryRowContext(ctx,
		`SELECT schema_name FROM dental.clinics WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&schemaName)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("clinic not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve clinic schema: %w", err)
	}
	return schemaName, nil
}

func (r *Repository) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.ContactEmail != nil {
		updates = append(updates, fmt.Sprintf("contact_email = $%d", argIndex))
		args = append(args, *req.ContactEmail)
		argIndex++
	}
	if req.ContactPhone != nil {
		updates = append(updates, fmt.Sprintf("contact_phone = $%d", argIndex))
		args = append(args, *req.ContactPhone)
		argIndex++
	}
	if req.Address != nil {
		updates = append(updates, fmt.Sprintf("address = $%d", argIndex))
		args = append(args, *req.Address)
		argIndex++
	}
	if req.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *req.Status)
		argIndex++
	}
	if req.Settings != nil {
		settingsJSON, err := json.Marshal(req.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal settings: %w", err)
		}
		updates = append(updates, fmt.Sprintf("settings = $%d", argIndex))
		args = append(args, settingsJSON)
		argIndex++
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE dental.clinics
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING id, name, schema_name, contact_email, contact_phone, address, status, settings, created_at, updated_at
	`, strings.Join(updates, ", "), argIndex)

	row := r.db.QueryRowContext(ctx, query, args...)
	clinic, err := scanClinic(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("clinic not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}
	return clinic, nil
}

func (r *Repository) DeleteClinic(ctx context.Context, id string) error {
	query := `
		UPDATE dental.clinics
		SET deleted_at = $1, status = 'deleted'
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clinic not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClinic(row rowScanner) (*ClinicResponse, error) {
	var clinic ClinicResponse
	var contactEmail, contactPhone, address sql.NullString
	var settingsJSON []byte
	var updatedAt sql.NullTime

	err := row.Scan(
		&clinic.ID,
		&clinic.Name,
		&clinic.SchemaName,
		&contactEmail,
		&contactPhone,
		&address,
		&clinic.Status,
		&settingsJSON,
		&clinic.CreatedAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan clinic: %w", err)
	}

	if contactEmail.Valid {
		clinic.ContactEmail = contactEmail.String
	}
	if contactPhone.Valid {
		clinic.ContactPhone = contactPhone.String
	}
	if address.Valid {
		clinic.Address = address.String
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &clinic.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	if updatedAt.Valid {
		clinic.UpdatedAt = &updatedAt.Time
	}

	return &clinic, nil
}
