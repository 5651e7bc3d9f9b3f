// Package auth provides the admin authentication context and authorization
// rules for back-office operations.
package auth

import (
	"context"
	"strings"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Role is the back-office role attached to an admin token.
type Role string

const (
	// RoleAdmin can manage everything.
	RoleAdmin Role = "admin"

	// RoleStaff can view and progress orders and upload media, but cannot
	// edit the catalog or delete records.
	RoleStaff Role = "staff"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Context represents the authentication context for a request.
type Context struct {
	// Subject is the configured name of the token that authenticated.
	Subject string

	// Role is the role granted to the token.
	Role Role

	// Authenticated indicates whether a valid admin token was presented.
	Authenticated bool
}

// Anonymous returns the context of a storefront visitor.
func Anonymous() Context {
	return Context{Authenticated: false}
}

// =============================================================================
// Token Extraction
// =============================================================================

// HeaderAuthorization carries the admin bearer token.
const HeaderAuthorization = "Authorization"

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is matched case-insensitively. Returns "" if absent.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Anonymous()
}
