package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Test Helpers
// =============================================================================

const (
	adminToken = "admin-token-0123456789"
	staffToken = "staff-token-0123456789"
)

// testHandler returns the auth context from the request as JSON.
func testHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": ctx.Authenticated,
			"subject":       ctx.Subject,
			"role":          string(ctx.Role),
		})
	})
}

func hash(t *testing.T, token string) string {
	t.Helper()
	h, err := crypto.HashToken(token, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newTestMiddleware(t *testing.T) *AuthMiddleware {
	t.Helper()
	return NewAuthMiddleware(AuthConfig{
		Tokens: []Token{
			{Name: "owner", Role: auth.RoleAdmin, Hash: hash(t, adminToken)},
			{Name: "shop-floor", Role: auth.RoleStaff, Hash: hash(t, staffToken)},
		},
	})
}

func serve(t *testing.T, h http.Handler, header string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/orders", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

// =============================================================================
// AuthMiddleware Tests
// =============================================================================

func TestAuthMiddleware_NoToken_Anonymous(t *testing.T) {
	m := newTestMiddleware(t)
	code, body := serve(t, m.Handler(testHandler()), "")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthMiddleware_AdminToken(t *testing.T) {
	m := newTestMiddleware(t)
	code, body := serve(t, m.Handler(testHandler()), "Bearer "+adminToken)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "owner", body["subject"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthMiddleware_StaffToken_CaseInsensitiveScheme(t *testing.T) {
	m := newTestMiddleware(t)
	code, body := serve(t, m.Handler(testHandler()), "bearer "+staffToken)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "staff", body["role"])
}

func TestAuthMiddleware_InvalidToken_Rejected(t *testing.T) {
	m := newTestMiddleware(t)
	code, body := serve(t, m.Handler(testHandler()), "Bearer not-a-real-token-at-all")

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["code"])
}

func TestAuthMiddleware_CachesVerifiedToken(t *testing.T) {
	m := newTestMiddleware(t)
	h := m.Handler(testHandler())

	serve(t, h, "Bearer "+adminToken)
	assert.Len(t, m.verified, 1)

	serve(t, h, "Bearer "+adminToken)
	assert.Len(t, m.verified, 1)
}

func TestNewAuthMiddleware_SkipsBadTokens(t *testing.T) {
	m := NewAuthMiddleware(AuthConfig{
		Tokens: []Token{
			{Name: "bad-role", Role: "root", Hash: hash(t, adminToken)},
			{Name: "bad-hash", Role: auth.RoleAdmin, Hash: "plaintext"},
		},
	})
	assert.False(t, m.Enabled())

	code, _ := serve(t, m.Handler(testHandler()), "Bearer "+adminToken)
	assert.Equal(t, http.StatusUnauthorized, code)
}

// =============================================================================
// RequireAuth Tests
// =============================================================================

func TestRequireAuth(t *testing.T) {
	m := newTestMiddleware(t)
	h := m.Handler(RequireAuth(nil)(testHandler()))

	code, body := serve(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authentication required", body["error"])

	code, body = serve(t, h, "Bearer "+staffToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["authenticated"])
}
