package patient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const patientColumns = `id, subject, first_name, last_name, email, phone_number, date_of_birth, address, emergency_contact_name, emergency_contact_phone, medical_notes, allergies, insurance_provider, insurance_number, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePatient(ctx context.Context, schemaName string, req CreatePatientRequest) (*PatientResponse, error) {
	patientID := uuid.New()
	createdAt := time.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s.patients
		(id, subject, first_name, last_name, email, phone_number, date_of_birth, address, emergency_contact_name, emergency_contact_phone, medical_notes, allergies, insurance_provider, insurance_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, $8, $9, $10, $11, $12, $13, $14, true, $15)
		RETURNING `+patientColumns+`
	`, pq.QuoteIdentifier(schemaName))

	row := r.db.QueryRowContext(ctx, query,
		patientID,
		nullable(req.Subject),
		req.FirstName,
		req.LastName,
		nullable(req.Email),
		nullable(req.PhoneNumber),
		req.DateOfBirth,
		nullable(req.Address),
		nullable(req.EmergencyContactName),
		nullable(req.EmergencyContactPhone),
		nullable(req.MedicalNotes),
		nullable(req.Allergies),
		nullable(req.InsuranceProvider),
		nullable(req.InsuranceNumber),
		createdAt,
	)

	patient, err := scanPatient(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("patient with this subject already exists")
		}
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}

	return patient, nil
}

func (r *Repository) ListPatients(ctx context.Context, schemaName string) ([]PatientResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+patientColumns+`
		FROM %s.patients
		WHERE deleted_at IS NULL
		ORDER BY last_name, first_name
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows)
}

// ListActivePatients returns only patients who are active and not deleted.
func (r *Repository) ListActivePatients(ctx context.Context, schemaName string) ([]PatientResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+patientColumns+`
		FROM %s.patients
		WHERE deleted_at IS NULL AND is_active = true
		ORDER BY last_name, first_name
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active patients: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows)
}

// ListPatientsWithPagination retrieves patients with pagination and optional
// name/email search.
func (r *Repository) ListPatientsWithPagination(ctx context.Context, schemaName string, limit, offset int, search string) ([]PatientResponse, int, error) {
	schema := pq.QuoteIdentifier(schemaName)

	whereClause := "WHERE deleted_at IS NULL"
	countArgs := []interface{}{}
	argIndex := 1

	if search != "" {
		whereClause += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex, argIndex)
		countArgs = append(countArgs, "%"+search+"%")
		argIndex++
	}

	var totalCount int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.patients %s", schema, whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+patientColumns+`
		FROM %s.patients
		%s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d
	`, schema, whereClause, argIndex, argIndex+1)

	args := append(countArgs, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients, err := collectPatients(rows)
	if err != nil {
		return nil, 0, err
	}
	return patients, totalCount, nil
}

func (r *Repository) GetPatient(ctx context.Context, schemaName string, id string) (*PatientResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+patientColumns+`
		FROM %s.patients
		WHERE id = $1 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return patient, nil
}

// GetPatientBySubject resolves the patient record linked to an identity
// provider subject, used by the patient portal "me" endpoints.
func (r *Repository) GetPatientBySubject(ctx context.Context, schemaName string, subject string) (*PatientResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+patientColumns+`
		FROM %s.patients
		WHERE subject = $1 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, subject))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return patient, nil
}

func (r *Repository) UpdatePatient(ctx context.Context, schemaName string, id string, req UpdatePatientRequest) (*PatientResponse, error) {
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
	if req.DateOfBirth != nil {
		set("date_of_birth", *req.DateOfBirth)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.EmergencyContactName != nil {
		set("emergency_contact_name", *req.EmergencyContactName)
	}
	if req.EmergencyContactPhone != nil {
		set("emergency_contact_phone", *req.EmergencyContactPhone)
	}
	if req.MedicalNotes != nil {
		set("medical_notes", *req.MedicalNotes)
	}
	if req.Allergies != nil {
		set("allergies", *req.Allergies)
	}
	if req.InsuranceProvider != nil {
		set("insurance_provider", *req.InsuranceProvider)
	}
	if req.InsuranceNumber != nil {
		set("insurance_number", *req.InsuranceNumber)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE %s.patients
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING `+patientColumns+`
	`, pq.QuoteIdentifier(schemaName), strings.Join(updates, ", "), argIndex)

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// DeletePatient soft-deletes the record. Appointment history referencing the
// patient is kept intact.
func (r *Repository) DeletePatient(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s.patients
		SET deleted_at = $1, is_active = false
		WHERE id = $2 AND deleted_at IS NULL
	`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
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

func scanPatient(row rowScanner) (*PatientResponse, error) {
	var patient PatientResponse
	var subject, email, phoneNumber, address sql.NullString
	var emergencyContactName, emergencyContactPhone sql.NullString
	var medicalNotes, allergies, insuranceProvider, insuranceNumber sql.NullString
	var dob sql.NullTime
	var updatedAt sql.NullTime

	err := row.Scan(
		&patient.ID,
		&subject,
		&patient.FirstName,
		&patient.LastName,
		&email,
		&phoneNumber,
		&dob,
		&address,
		&emergencyContactName,
		&emergencyContactPhone,
		&medicalNotes,
		&allergies,
		&insuranceProvider,
		&insuranceNumber,
		&patient.IsActive,
		&patient.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	patient.Subject = subject.String
	patient.Email = email.String
	patient.PhoneNumber = phoneNumber.String
	patient.Address = address.String
	patient.EmergencyContactName = emergencyContactName.String
	patient.EmergencyContactPhone = emergencyContactPhone.String
	patient.MedicalNotes = medicalNotes.String
	patient.Allergies = allergies.String
	patient.InsuranceProvider = insuranceProvider.String
	patient.InsuranceNumber = insuranceNumber.String
	if dob.Valid {
		formatted := dob.Time.Format("2006-01-02")
		patient.DateOfBirth = &formatted
	}
	if updatedAt.Valid {
		patient.UpdatedAt = &updatedAt.Time
	}

	return &patient, nil
}

func collectPatients(rows *sql.Rows) ([]PatientResponse, error) {
	var patients []PatientResponse
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}
	return patients, nil
}
