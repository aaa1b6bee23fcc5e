// package tokens owns the bearer token lifecycle: acquisition from a redirect
// fragment, durable persistence, and invalidation.
package tokens

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the credential set delivered by the backend's auth callback.
//
// AccessToken is the only required field: a Token with an empty AccessToken
// is equivalent to being signed out. The whole value is replaced on
// login/refresh and destroyed on logout; fields are never mutated piecemeal.
type Token struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	AppToken       string `json:"app_token,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	ProviderUserID string `json:"spotify_id,omitempty"`
}

// Present reports whether the token counts as "signed in".
func (t *Token) Present() bool {
	return t != nil && t.AccessToken != ""
}

// Label returns a short human identity for status output: the display name
// when known, otherwise the provider user id, otherwise a placeholder.
func (t *Token) Label() string {
	switch {
	case t == nil:
		return "(signed out)"
	case t.DisplayName != "":
		return t.DisplayName
	case t.ProviderUserID != "":
		return t.ProviderUserID
	default:
		return "(unknown)"
	}
}

// merge returns a copy of t with empty fields filled from prev, so that
// saving a partial token does not clobber persisted values.
func (t Token) merge(prev *Token) Token {
	if prev == nil {
		return t
	}
	if t.RefreshToken == "" {
		t.RefreshToken = prev.RefreshToken
	}
	if t.AppToken == "" {
		t.AppToken = prev.AppToken
	}
	if t.DisplayName == "" {
		t.DisplayName = prev.DisplayName
	}
	if t.ProviderUserID == "" {
		t.ProviderUserID = prev.ProviderUserID
	}
	return t
}

// AppClaims decodes the backend-issued app token without verifying its
// signature. The CLI has no verification key; this is display-only
// introspection (subject, expiry) for `auth status`.
func (t *Token) AppClaims() (jwt.MapClaims, error) {
	if t == nil || t.AppToken == "" {
		return nil, fmt.Errorf("no app token present")
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(t.AppToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse app token: %w", err)
	}

	return claims, nil
}
