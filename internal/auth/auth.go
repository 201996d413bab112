// Package auth supplies caller identity to the booking engine. The engine
// itself only ever sees a user id and an access token; the Google OAuth
// exchange lives entirely at this edge.
package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"roomdesk/internal/model"
)

type contextKey struct{}

var identityKey contextKey

// GoogleConfig builds the OAuth2 config used by the login flow.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
}

// DomainAllowed checks an email against the configured workspace domain.
// An empty domain allows everyone.
func DomainAllowed(email, domain string) bool {
	if domain == "" {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return email[at+1:] == domain
}

// Middleware extracts the caller identity from the request: the user id
// from the X-User-ID header and the access token from the Authorization
// bearer header. Handlers read it back with IdentityFrom; an incomplete
// identity is passed through and short-circuits persistence submits
// further down.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := model.Identity{
			UserID:      r.Header.Get("X-User-ID"),
			AccessToken: bearerToken(r),
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the identity attached by Middleware.
func IdentityFrom(ctx context.Context) model.Identity {
	id, _ := ctx.Value(identityKey).(model.Identity)
	return id
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
