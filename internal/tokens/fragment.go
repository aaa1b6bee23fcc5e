package tokens

import (
	"net/url"
	"strings"
)

// Fragment keys the auth callback appends after '#' on the client address.
const (
	fragmentAccessToken  = "access_token"
	fragmentRefreshToken = "refresh_token"
	fragmentAppToken     = "app_token"
	fragmentDisplayName  = "display_name"
	fragmentProviderID   = "spotify_id"
)

// ParseFragment extracts a Token from a redirect payload.
//
// Accepts a full callback URL ("http://…/#access_token=…"), a bare fragment
// ("#access_token=…"), or the key=value set itself. Returns false when no
// access_token is present; a fragment without one delivers nothing.
func ParseFragment(raw string) (*Token, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[idx+1:]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, false
	}

	token := &Token{
		AccessToken:    values.Get(fragmentAccessToken),
		RefreshToken:   values.Get(fragmentRefreshToken),
		AppToken:       values.Get(fragmentAppToken),
		DisplayName:    values.Get(fragmentDisplayName),
		ProviderUserID: values.Get(fragmentProviderID),
	}

	if !token.Present() {
		return nil, false
	}

	return token, true
}

// StripFragment returns the address without its fragment, so a reload of the
// stripped address cannot re-apply the redirect payload.
func StripFragment(raw string) string {
	if idx := strings.Index(raw, "#"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}
