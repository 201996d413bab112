package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"roomdesk/internal/auth"
)

// AuthHandler serves the Google login flow. The rest of the service only
// ever consumes the resulting {user id, access token} pair.
type AuthHandler struct {
	oauth         *oauth2.Config
	allowedDomain string
	logger        zerolog.Logger
}

// NewAuthHandler creates the login handler.
func NewAuthHandler(oauth *oauth2.Config, allowedDomain string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		oauth:         oauth,
		allowedDomain: allowedDomain,
		logger:        logger.With().Str("component", "auth").Logger(),
	}
}

// Login redirects the browser to the Google consent page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	url := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback exchanges the authorization code and returns the token pair
// the client will present on later requests.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("code exchange failed")
		writeError(w, http.StatusUnauthorized, "code exchange failed")
		return
	}

	email, _ := token.Extra("email").(string)
	if email != "" && !auth.DomainAllowed(email, h.allowedDomain) {
		writeError(w, http.StatusForbidden, "email domain not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": token.AccessToken,
		"email":        email,
	})
}
