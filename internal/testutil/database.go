package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// SetupTestDB connects to the database named by TEST_DATABASE_URL and skips
// the test when it is not set, so integration tests stay out of plain runs.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return db
}

// SetupTestTransaction begins a transaction that is rolled back when the
// test ends, so repository tests leave no rows behind.
func SetupTestTransaction(t *testing.T) (*sql.DB, *sql.Tx) {
	t.Helper()

	db := SetupTestDB(t)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		db.Close()
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	t.Cleanup(func() {
		tx.Rollback()
		db.Close()
	})

	return db, tx
}

// CleanupTestDB removes clinics and any tenant schemas created during tests.
// Use this if you're not running inside a transaction.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE TABLE dental.clinics CASCADE")
	if err != nil {
		t.Logf("Warning: Failed to clean up clinics: %v", err)
	}

	rows, err := db.Query(`
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name LIKE 'clinic_%'
	`)
	if err != nil {
		t.Logf("Warning: Failed to query tenant schemas: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName string
		if err := rows.Scan(&schemaName); err != nil {
			continue
		}
		_, err := db.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
		if err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", schemaName, err)
		}
	}
}

// CreateTestClinic inserts a clinic row and provisions its tenant schema.
func CreateTestClinic(t *testing.T, db *sql.DB, name string) (clinicID, schemaName string) {
	t.Helper()

	schemaName = fmt.Sprintf("clinic_test_%s", name)
	err := db.QueryRow(`
		INSERT INTO dental.clinics (name, schema_name, status, created_at)
		VALUES ($1, $2, 'active', NOW())
		RETURNING id, schema_name
	`, name, schemaName).Scan(&clinicID, &schemaName)
	if err != nil {
		t.Fatalf("Failed to create test clinic: %v", err)
	}

	if _, err := db.Exec("SELECT dental.create_tenant_schema($1)", schemaName); err != nil {
		t.Fatalf("Failed to create tenant schema: %v", err)
	}

	return clinicID, schemaName
}
