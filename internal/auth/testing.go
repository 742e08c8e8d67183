package auth

import "context"

// ContextWithPrincipal injects a principal for tests that bypass the
// middleware stack.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
