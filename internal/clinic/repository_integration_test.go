//go:build integration

package clinic

import (
	"context"
	"testing"

	"github.com/BrightSmileDental/clinic-service/internal/testutil"
)

// Requires a database with the platform migrations applied; gated behind
// TEST_DATABASE_URL and the integration build tag.
func TestRepository_ProvisionAndResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
		db.Close()
	})

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateClinic(ctx, CreateClinicRequest{
		Name:         "Bright Smile Test",
		ContactEmail: "front-desk@example.com",
	})
	if err != nil {
		t.Fatalf("Failed to create clinic: %v", err)
	}
	if created.SchemaName == "" {
		t.Fatal("Expected a schema name to be assigned")
	}

	schema, err := repo.GetSchemaNameByClinicID(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to resolve schema: %v", err)
	}
	if schema != created.SchemaName {
		t.Errorf("Expected schema %q, got %q", created.SchemaName, schema)
	}

	tenants, err := repo.ListActiveTenants(ctx)
	if err != nil {
		t.Fatalf("Failed to list tenants: %v", err)
	}
	found := false
	for _, tn := range tenants {
		if tn.ClinicID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("Expected new clinic in active tenant list")
	}

	if err := repo.DeleteClinic(ctx, created.ID); err != nil {
		t.Fatalf("Failed to soft delete clinic: %v", err)
	}

	tenants, err = repo.ListActiveTenants(ctx)
	if err != nil {
		t.Fatalf("Failed to list tenants after delete: %v", err)
	}
	for _, tn := range tenants {
		if tn.ClinicID == created.ID {
			t.Error("Soft-deleted clinic should not appear in active tenant list")
		}
	}
}
