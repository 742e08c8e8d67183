package auth

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadPermissions_ValidFile tests loading a well-formed permissions file
func TestLoadPermissions_ValidFile(t *testing.T) {
	content := `roles:
  OWNER:
    - clinic:view
    - clinic:update
    - analytics:view
  PATIENT:
    - appointment:book
    - appointment:view
`
	path := filepath.Join(t.TempDir(), "permissions.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	perms, err := LoadPermissions(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(perms["OWNER"]) != 3 {
		t.Errorf("Expected 3 OWNER permissions, got %d", len(perms["OWNER"]))
	}
	if len(perms["PATIENT"]) != 2 {
		t.Errorf("Expected 2 PATIENT permissions, got %d", len(perms["PATIENT"]))
	}
	if perms["PATIENT"][0] != "appointment:book" {
		t.Errorf("Expected 'appointment:book', got '%s'", perms["PATIENT"][0])
	}
}

// TestLoadPermissions_MissingFile tests that a missing file returns an error
func TestLoadPermissions_MissingFile(t *testing.T) {
	_, err := LoadPermissions("/nonexistent/permissions.yml")
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

// TestLoadPermissions_InvalidYAML tests that malformed YAML returns an error
func TestLoadPermissions_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.yml")
	if err := os.WriteFile(path, []byte("roles: [unclosed"), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	_, err := LoadPermissions(path)
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

// TestHasPermission_CaseInsensitiveRole tests lowercase realm roles match
// uppercase permissions.yml entries
func TestHasPermission_CaseInsensitiveRole(t *testing.T) {
	perms := Permissions{
		"DENTIST": {"schedule:view", "appointment:complete"},
	}

	pr := &Principal{UserID: "u1", Roles: []string{"dentist"}}

	if !HasPermission(pr, "schedule:view", perms) {
		t.Error("Expected lowercase role to match uppercase permissions entry")
	}
	if HasPermission(pr, "clinic:delete", perms) {
		t.Error("Expected unlisted permission to be denied")
	}
}

// TestHasPermission_NoRoles tests a principal without roles is denied
func TestHasPermission_NoRoles(t *testing.T) {
	perms := Permissions{
		"OWNER": {"clinic:view"},
	}

	pr := &Principal{UserID: "u1"}

	if HasPermission(pr, "clinic:view", perms) {
		t.Error("Expected principal without roles to be denied")
	}
}
