package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Principal holds identity extracted from a validated token.
type Principal struct {
	UserID       string
	Roles        []string
	ClinicID     string
	ClinicSchema string
	Claims       jwt.MapClaims
}

// HasRole reports whether the principal carries the role, case-insensitively.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

var (
	ErrNoToken       = errors.New("no token provided")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidIssuer = errors.New("invalid issuer")
	ErrMissingSub    = errors.New("missing sub claim")
)

// Verifier validates bearer tokens against the realm's signing keys.
type Verifier struct {
	cfg  Config
	keys KeyProvider
}

// NewVerifier constructs a Verifier with config and a key provider
// (normally a JWKS).
func NewVerifier(cfg Config, keys KeyProvider) *Verifier {
	return &Verifier{cfg: cfg, keys: keys}
}

// ParseAndVerifyToken verifies a bearer token, validates issuer/exp and
// returns the Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	tokenString = strings.TrimSpace(tokenString)
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		// enforce RS256
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return v.keys.Get(kid)
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != v.cfg.Issuer {
		return nil, ErrInvalidIssuer
	}
	if !claims.VerifyExpiresAt(jwt.TimeFunc().Unix(), true) {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSub
	}

	// extract roles from realm_access.roles
	var roles []string
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		if rr, ok := ra["roles"].([]interface{}); ok {
			for _, r := range rr {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}
	}

	// clinic claims are absent for platform admins
	clinicID, _ := claims["clinicId"].(string)
	clinicSchema, _ := claims["clinicSchema"].(string)

	return &Principal{
		UserID:       sub,
		Roles:        roles,
		ClinicID:     clinicID,
		ClinicSchema: clinicSchema,
		Claims:       claims,
	}, nil
}
