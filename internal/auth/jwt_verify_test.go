package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

func signTestToken(t *testing.T, privateKey *rsa.PrivateKey, claims jwt.MapClaims, withKid bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if withKid {
		token.Header["kid"] = "test-key-id"
	}
	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

// TestVerifier_ParseAndVerifyToken_Success tests successful token parsing
func TestVerifier_ParseAndVerifyToken_Success(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": cfg.Issuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"OWNER", "DENTIST"},
		},
		"clinicId":     "clinic-456",
		"clinicSchema": "clinic_456_schema",
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if principal == nil {
		t.Fatal("Expected principal, got nil")
	}
	if principal.UserID != "user-123" {
		t.Errorf("Expected UserID 'user-123', got '%s'", principal.UserID)
	}
	if len(principal.Roles) != 2 {
		t.Errorf("Expected 2 roles, got %d", len(principal.Roles))
	}
	if principal.Roles[0] != "OWNER" {
		t.Errorf("Expected first role 'OWNER', got '%s'", principal.Roles[0])
	}
	if principal.ClinicID != "clinic-456" {
		t.Errorf("Expected ClinicID 'clinic-456', got '%s'", principal.ClinicID)
	}
	if principal.ClinicSchema != "clinic_456_schema" {
		t.Errorf("Expected ClinicSchema 'clinic_456_schema', got '%s'", principal.ClinicSchema)
	}
}

// TestVerifier_ParseAndVerifyToken_EmptyToken tests empty token
func TestVerifier_ParseAndVerifyToken_EmptyToken(t *testing.T) {
	cfg := Config{Issuer: "https://test.com"}
	verifier := NewVerifier(cfg, nil)

	principal, err := verifier.ParseAndVerifyToken("")

	if err != ErrNoToken {
		t.Errorf("Expected ErrNoToken, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

// TestVerifier_ParseAndVerifyToken_InvalidIssuer tests issuer mismatch
func TestVerifier_ParseAndVerifyToken_InvalidIssuer(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://expected-issuer.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": "https://wrong-issuer.com/realms/other",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != ErrInvalidIssuer {
		t.Errorf("Expected ErrInvalidIssuer, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

// TestVerifier_ParseAndVerifyToken_ExpiredToken tests expired token rejection
func TestVerifier_ParseAndVerifyToken_ExpiredToken(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": cfg.Issuer,
		"exp": time.Now().Add(-1 * time.Hour).Unix(),
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

// TestVerifier_ParseAndVerifyToken_MissingSubClaim tests missing sub claim
func TestVerifier_ParseAndVerifyToken_MissingSubClaim(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"iss": cfg.Issuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != ErrMissingSub {
		t.Errorf("Expected ErrMissingSub, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

// TestVerifier_ParseAndVerifyToken_NoKid tests token without kid header
func TestVerifier_ParseAndVerifyToken_NoKid(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": cfg.Issuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, false))

	if err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

// TestVerifier_ParseAndVerifyToken_NoRoles tests token without realm roles
func TestVerifier_ParseAndVerifyToken_NoRoles(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": cfg.Issuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(principal.Roles) != 0 {
		t.Errorf("Expected no roles, got %v", principal.Roles)
	}
}

// TestVerifier_ParseAndVerifyToken_NoClinicClaims tests a platform admin token
// that carries no clinic context
func TestVerifier_ParseAndVerifyToken_NoClinicClaims(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)

	cfg := Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}
	verifier := NewVerifier(cfg, NewTestJWKS(publicKey))

	claims := jwt.MapClaims{
		"sub": "admin-1",
		"iss": cfg.Issuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"PLATFORM_ADMIN"},
		},
	}

	principal, err := verifier.ParseAndVerifyToken(signTestToken(t, privateKey, claims, true))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if principal.ClinicID != "" {
		t.Errorf("Expected empty ClinicID, got '%s'", principal.ClinicID)
	}
	if principal.ClinicSchema != "" {
		t.Errorf("Expected empty ClinicSchema, got '%s'", principal.ClinicSchema)
	}
}
