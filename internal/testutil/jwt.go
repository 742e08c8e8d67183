package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GenerateTestKeyPair generates an RSA key pair for testing JWT tokens
func GenerateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// GenerateTestJWT creates a valid JWT token for testing.
// Clinic claims are omitted when empty, matching platform admin tokens.
func GenerateTestJWT(t *testing.T, privateKey *rsa.PrivateKey, userID, clinicID, clinicSchema string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "https://test-keycloak.com/realms/test",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
		"realm_access": map[string]interface{}{
			"roles": interfaceSlice(roles),
		},
	}

	if clinicID != "" {
		claims["clinicId"] = clinicID
	}
	if clinicSchema != "" {
		claims["clinicSchema"] = clinicSchema
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key-id"

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	return tokenString
}

// GeneratePlatformAdminToken creates a PLATFORM_ADMIN token for testing
func GeneratePlatformAdminToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "admin-123", "", "", []string{"PLATFORM_ADMIN"})
}

// GenerateOwnerToken creates an OWNER token for testing
func GenerateOwnerToken(t *testing.T, privateKey *rsa.PrivateKey, clinicID, clinicSchema string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "owner-123", clinicID, clinicSchema, []string{"OWNER"})
}

// GenerateDentistToken creates a DENTIST token for testing
func GenerateDentistToken(t *testing.T, privateKey *rsa.PrivateKey, clinicID, clinicSchema string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "dentist-123", clinicID, clinicSchema, []string{"DENTIST"})
}

// GenerateReceptionistToken creates a RECEPTIONIST token for testing
func GenerateReceptionistToken(t *testing.T, privateKey *rsa.PrivateKey, clinicID, clinicSchema string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "reception-123", clinicID, clinicSchema, []string{"RECEPTIONIST"})
}

// GeneratePatientToken creates a PATIENT token for testing
func GeneratePatientToken(t *testing.T, privateKey *rsa.PrivateKey, clinicID, clinicSchema string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "patient-123", clinicID, clinicSchema, []string{"PATIENT"})
}

// interfaceSlice converts []string to []interface{} for JWT claims
func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
