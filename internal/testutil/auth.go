package testutil

import (
	"crypto/rsa"
	"testing"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
)

// CreateTestVerifier creates a verifier wired to a fresh test key pair.
// It returns the verifier and the private key to sign test tokens with.
func CreateTestVerifier(t *testing.T) (*auth.Verifier, *rsa.PrivateKey) {
	t.Helper()

	privateKey, publicKey := GenerateTestKeyPair(t)
	testJWKS := auth.NewTestJWKS(publicKey)

	cfg := auth.Config{
		Issuer: "https://test-keycloak.com/realms/test",
	}

	return auth.NewVerifier(cfg, testJWKS), privateKey
}
