package tenant

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/gorilla/mux"
)

type contextKey string

const (
	schemaKey   contextKey = "tenantSchema"
	clinicIDKey contextKey = "tenantClinicID"
)

// SchemaResolver looks up the tenant schema for a clinic ID. Implemented by
// the clinic repository.
type SchemaResolver func(ctx context.Context, clinicID string) (string, error)

// Middleware resolves the tenant schema for the request and stores it in the
// context. Clinic staff and patients carry their clinic in the token; platform
// admins select one with the X-Clinic-ID header.
func Middleware(resolve SchemaResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.FromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
				return
			}

			clinicID := principal.ClinicID
			schema := principal.ClinicSchema

			if clinicID == "" {
				clinicID = r.Header.Get("X-Clinic-ID")
				schema = ""
			}
			if clinicID == "" {
				respondError(w, http.StatusBadRequest, "missing_clinic", "No clinic context: token has no clinic and X-Clinic-ID header is not set")
				return
			}

			if schema == "" {
				resolved, err := resolve(r.Context(), clinicID)
				if err != nil {
					respondError(w, http.StatusInternalServerError, "schema_lookup_failed", err.Error())
					return
				}
				if resolved == "" {
					respondError(w, http.StatusNotFound, "clinic_not_found", "Clinic not found")
					return
				}
				schema = resolved
			}

			ctx := context.WithValue(r.Context(), schemaKey, schema)
			ctx = context.WithValue(ctx, clinicIDKey, clinicID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SchemaFromContext returns the tenant schema resolved by Middleware.
func SchemaFromContext(ctx context.Context) (string, bool) {
	schema, ok := ctx.Value(schemaKey).(string)
	return schema, ok && schema != ""
}

// ClinicIDFromContext returns the clinic ID resolved by Middleware.
func ClinicIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clinicIDKey).(string)
	return id, ok && id != ""
}

// ContextWithTenant injects tenant context directly, for tests.
func ContextWithTenant(ctx context.Context, clinicID, schema string) context.Context {
	ctx = context.WithValue(ctx, schemaKey, schema)
	return context.WithValue(ctx, clinicIDKey, clinicID)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorType,
		"message": message,
	})
}
