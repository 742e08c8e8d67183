package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const principalKey ctxKey = "auth_principal"

var tracer = otel.Tracer("github.com/BrightSmileDental/clinic-service/auth")

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// Middleware validates the token and injects the Principal into the request
// context.
func Middleware(ver *Verifier) func(http.Handler) http.Handler {
	return MiddlewareWithMetrics(ver, nil)
}

// MiddlewareWithMetrics validates token with metrics recording
func MiddlewareWithMetrics(ver *Verifier, metrics MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx, span := tracer.Start(ctx, "auth.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			authz := r.Header.Get("Authorization")
			if authz == "" {
				span.SetStatus(codes.Error, "missing authorization")
				span.SetAttributes(attribute.String("error.type", "missing_authorization"))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "missing_authorization")
				}
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				span.SetStatus(codes.Error, "invalid authorization header")
				span.SetAttributes(attribute.String("error.type", "invalid_header_format"))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "invalid_header_format")
				}
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			pr, err := ver.ParseAndVerifyToken(parts[1])
			if err != nil {
				log.Printf("[ERROR] Token validation failed: %v", err)
				span.SetStatus(codes.Error, "token validation failed")
				span.SetAttributes(
					attribute.String("error.type", "invalid_token"),
					attribute.String("error.message", err.Error()),
				)
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "invalid_token")
				}
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			span.SetAttributes(
				attribute.String("user.id", pr.UserID),
				attribute.StringSlice("user.roles", pr.Roles),
				attribute.String("clinic.id", pr.ClinicID),
			)
			span.SetStatus(codes.Ok, "authentication successful")

			ctx = context.WithValue(ctx, principalKey, pr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PermissionMetricsRecorder interface for recording permission check metrics
type PermissionMetricsRecorder interface {
	RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool)
}

// RequirePermission returns middleware that ensures the principal has permission.
func RequirePermission(per string, perms Permissions) func(http.Handler) http.Handler {
	return RequirePermissionWithMetrics(per, perms, nil)
}

// RequirePermissionWithMetrics returns middleware with metrics recording
func RequirePermissionWithMetrics(per string, perms Permissions, metrics PermissionMetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ctx, span := tracer.Start(ctx, "auth.RequirePermission",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("permission.required", per)),
			)
			defer span.End()

			pr, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				if metrics != nil {
					metrics.RecordPermissionCheck(ctx, per, float64(time.Since(start).Milliseconds()), false)
				}
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			allowed := HasPermission(pr, per, perms)
			duration := float64(time.Since(start).Milliseconds())

			span.SetAttributes(
				attribute.Bool("permission.allowed", allowed),
				attribute.String("user.id", pr.UserID),
				attribute.StringSlice("user.roles", pr.Roles),
			)

			if metrics != nil {
				metrics.RecordPermissionCheck(ctx, per, duration, allowed)
			}

			if !allowed {
				log.Printf("[PERMISSION DENIED] User: %s, Roles: %v, Required Permission: %s",
					pr.UserID, pr.Roles, per)
				span.SetStatus(codes.Error, "forbidden")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			span.SetStatus(codes.Ok, "permission granted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts Principal from context.
func FromContext(ctx context.Context) (*Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*Principal)
	return pr, ok
}

// HasPermission checks roles -> permissions mapping.
// Role lookup is case-insensitive so Keycloak realm roles (e.g. "dentist")
// match permissions.yml (e.g. "DENTIST").
func HasPermission(pr *Principal, permission string, perms Permissions) bool {
	for _, role := range pr.Roles {
		pList, ok := perms[role]
		if !ok {
			pList, ok = perms[strings.ToUpper(role)]
		}
		if ok {
			for _, p := range pList {
				if p == permission {
					return true
				}
			}
		}
	}
	return false
}
