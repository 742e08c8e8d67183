package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const documentColumns = `id, patient_id, file_name, content_type, size_bytes, uploaded_by, created_at`

// RepositoryInterface defines the contract for document data access. All
// operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	Insert(ctx context.Context, schemaName string, doc DocumentResponse, content []byte) (*DocumentResponse, error)
	GetMeta(ctx context.Context, schemaName string, id string) (*DocumentResponse, error)
	GetContent(ctx context.Context, schemaName string, id string) (*DocumentContent, error)
	ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error)
	Delete(ctx context.Context, schemaName string, id string) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

func (r *Repository) Insert(ctx context.Context, schemaName string, doc DocumentResponse, content []byte) (*DocumentResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s.documents (id, patient_id, file_name, content_type, size_bytes, content, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+documentColumns+`
	`, pq.QuoteIdentifier(schemaName))

	created, err := scanDocument(r.db.QueryRowContext(ctx, query,
		doc.ID,
		doc.PatientID,
		doc.FileName,
		doc.ContentType,
		doc.SizeBytes,
		content,
		nullable(doc.UploadedBy),
		time.Now(),
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return created, nil
}

func (r *Repository) GetMeta(ctx context.Context, schemaName string, id string) (*DocumentResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+documentColumns+`
		FROM %s.documents
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

func (r *Repository) GetContent(ctx context.Context, schemaName string, id string) (*DocumentContent, error) {
	query := fmt.Sprintf(`
		SELECT id, patient_id, file_name, content_type, size_bytes, content, uploaded_by, created_at
		FROM %s.documents
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	var doc DocumentContent
	var uploadedBy sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.PatientID,
		&doc.FileName,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.Content,
		&uploadedBy,
		&doc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document content: %w", err)
	}
	doc.UploadedBy = uploadedBy.String
	return &doc, nil
}

func (r *Repository) ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+documentColumns+`
		FROM %s.documents
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentResponse
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (r *Repository) Delete(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s.documents WHERE id = $1`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion result: %w", err)
	}
	if affected == 0 {
		return ErrDocumentNotFound
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

func scanDocument(row rowScanner) (*DocumentResponse, error) {
	var doc DocumentResponse
	var uploadedBy sql.NullString

	err := row.Scan(
		&doc.ID,
		&doc.PatientID,
		&doc.FileName,
		&doc.ContentType,
		&doc.SizeBytes,
		&uploadedBy,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.UploadedBy = uploadedBy.String
	return &doc, nil
}
