package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

func TestDomainAllowed(t *testing.T) {
	assert.True(t, DomainAllowed("alice@example.com", "example.com"))
	assert.False(t, DomainAllowed("alice@evil.com", "example.com"))
	assert.False(t, DomainAllowed("no-at-sign", "example.com"))
	assert.True(t, DomainAllowed("anyone@anywhere.com", ""), "empty domain allows everyone")
}

func TestMiddleware_ExtractsIdentity(t *testing.T) {
	var got model.Identity
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("Authorization", "Bearer tok-123")

	Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "u1", got.UserID)
	assert.Equal(t, "tok-123", got.AccessToken)
	assert.True(t, got.IsComplete())
}

func TestMiddleware_MissingHeaders(t *testing.T) {
	var got model.Identity
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	})

	Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Empty(t, got.UserID)
	assert.False(t, got.IsComplete())
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", bearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(req))

	req.Header.Del("Authorization")
	assert.Empty(t, bearerToken(req))
}

func TestIdentityFrom_EmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, IdentityFrom(req.Context()).UserID)
}
