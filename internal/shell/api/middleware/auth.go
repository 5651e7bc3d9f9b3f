// Package middleware provides HTTP middleware for the solarshop API.
package middleware

import (
	"crypto/sha256"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/crypto"
)

// =============================================================================
// Auth Configuration
// =============================================================================

// Token is a configured back-office credential. Hash is the bcrypt hash of
// the bearer token; the plaintext is never stored.
type Token struct {
	Name string
	Role auth.Role
	Hash string
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Tokens are the accepted admin credentials.
	Tokens []Token

	// Logger for auth middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware resolves the bearer token on a request into an auth context.
// Requests without a token pass through as anonymous storefront visitors.
type AuthMiddleware struct {
	config AuthConfig

	// verified maps sha256(token) to its resolved context so bcrypt runs
	// once per token rather than once per request.
	mu       sync.RWMutex
	verified map[[sha256.Size]byte]auth.Context
}

// NewAuthMiddleware creates a new auth middleware with the given config.
// Tokens with an unknown role or a malformed hash are skipped with a warning.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	valid := make([]Token, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		if !t.Role.IsValid() {
			cfg.Logger.Warn("ignoring admin token with unknown role", "name", t.Name, "role", t.Role)
			continue
		}
		if err := crypto.ValidateHash(t.Hash); err != nil {
			cfg.Logger.Warn("ignoring admin token with invalid hash", "name", t.Name, "error", err)
			continue
		}
		valid = append(valid, t)
	}
	cfg.Tokens = valid

	return &AuthMiddleware{
		config:   cfg,
		verified: make(map[[sha256.Size]byte]auth.Context),
	}
}

// Enabled reports whether any admin token is configured.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.config.Tokens) > 0
}

// Handler returns the middleware handler function.
// A present but unknown token is rejected with 401 rather than downgraded
// to anonymous.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get(auth.HeaderAuthorization))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, ok := m.resolve(token)
		if !ok {
			m.config.Logger.Warn("invalid admin token",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeJSONError(w, http.StatusUnauthorized, "Invalid token", "unauthorized")
			return
		}

		r = r.WithContext(auth.WithContext(r.Context(), ctx))
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(token string) (auth.Context, bool) {
	key := sha256.Sum256([]byte(token))

	m.mu.RLock()
	ctx, ok := m.verified[key]
	m.mu.RUnlock()
	if ok {
		return ctx, true
	}

	for _, t := range m.config.Tokens {
		if crypto.VerifyToken(t.Hash, token) {
			ctx = auth.Context{Subject: t.Name, Role: t.Role, Authenticated: true}
			m.mu.Lock()
			m.verified[key] = ctx
			m.mu.Unlock()
			return ctx, true
		}
	}
	return auth.Context{}, false
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth is a middleware that requires an authenticated admin.
// Must be used AFTER AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())

			if !ctx.Authenticated {
				logger.Warn("unauthenticated request to protected endpoint",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

// ErrorResponse matches the API's plain JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="solarshop"`)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}
