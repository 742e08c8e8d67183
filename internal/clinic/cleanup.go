package clinic

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

// RetentionPeriod defines how long deleted clinics are retained (3 years)
const RetentionPeriod = 3 * 365 * 24 * time.Hour

// CleanupService handles permanent deletion of expired soft-deleted clinics
type CleanupService struct {
	db *sql.DB
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *sql.DB) *CleanupService {
	return &CleanupService{db: db}
}

// CleanupExpiredClinics permanently deletes clinics that have been
// soft-deleted for longer than the retention period, including dropping their
// tenant schemas.
func (s *CleanupService) CleanupExpiredClinics(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)
	log.Printf("Starting cleanup of clinics deleted before %s", cutoffDate.Format(time.RFC3339))

	query := `
		SELECT id, schema_name
		FROM dental.clinics
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
		ORDER BY deleted_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired clinics: %w", err)
	}
	defer rows.Close()

	var expired []struct {
		ID         string
		SchemaName string
	}

	for rows.Next() {
		var c struct {
			ID         string
			SchemaName string
		}
		if err := rows.Scan(&c.ID, &c.SchemaName); err != nil {
			return 0, fmt.Errorf("failed to scan clinic: %w", err)
		}
		expired = append(expired, c)
	}

	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating clinics: %w", err)
	}

	if len(expired) == 0 {
		log.Println("No expired clinics found for cleanup")
		return 0, nil
	}

	log.Printf("Found %d clinics to permanently delete", len(expired))

	deletedCount := 0
	for _, c := range expired {
		if err := s.permanentlyDeleteClinic(ctx, c.ID, c.SchemaName); err != nil {
			log.Printf("Failed to delete clinic %s: %v", c.ID, err)
			continue
		}
		deletedCount++
	}

	log.Printf("Successfully cleaned up %d/%d expired clinics", deletedCount, len(expired))
	return deletedCount, nil
}

// permanentlyDeleteClinic performs hard delete of a clinic and drops its schema
func (s *CleanupService) permanentlyDeleteClinic(ctx context.Context, clinicID, schemaName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `
		DELETE FROM dental.clinics
		WHERE id = $1 AND deleted_at IS NOT NULL
	`
	result, err := tx.ExecContext(ctx, deleteQuery, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete clinic record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clinic not found or not soft-deleted")
	}

	// CASCADE drops all tenant tables with the schema
	dropSchemaQuery := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schemaName))
	if _, err := tx.ExecContext(ctx, dropSchemaQuery); err != nil {
		return fmt.Errorf("failed to drop schema %s: %w", schemaName, err)
	}

	schemaCacheMutex.Lock()
	delete(schemaCache, clinicID)
	schemaCacheMutex.Unlock()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Permanently deleted clinic %s and dropped schema %s", clinicID, schemaName)
	return nil
}

// GetExpiredClinicsCount returns count of clinics eligible for cleanup
func (s *CleanupService) GetExpiredClinicsCount(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)

	var count int
	query := `
		SELECT COUNT(*)
		FROM dental.clinics
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
	`

	err := s.db.QueryRowContext(ctx, query, cutoffDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired clinics: %w", err)
	}

	return count, nil
}
