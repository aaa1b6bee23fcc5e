// Package services defines the [Client] interface for the Tuniverse backend and implements it over HTTP.
//
// # Client Interface
//
// [TuniverseService] is the canonical implementation. It performs the four
// logical reads the backend exposes (profile, playlists, passport from top
// artists, passport from recent plays) plus the unauthenticated demo
// passport, and normalizes the JSON payloads into the fixed [Profile],
// [PlaylistPage] and [Passport] shapes. It never retries and never caches;
// callers own each result for exactly one render cycle.
//
// # Authentication
//
// The backend authenticates requests with the bearer token passed as the
// access_token query parameter. Operations that require a token check it
// locally before any network I/O and fail with [shared.ErrNotAuthenticated]
// when it is empty.
//
// [SpotifyAuthenticator] implements the optional direct authorization-code
// flow against Spotify for users who bring their own client credentials; the
// normal login flow is hosted by the backend and needs nothing local.
//
// # Error Handling
//
// Every failure is typed:
//   - [shared.ErrNotAuthenticated] : no token present, request never sent
//   - [HTTPError] : non-2xx backend response with captured status and body
//   - [NetworkError] : transport-level failure
//   - [DecodeError] : response body is not the expected shape
//
// All unwrap to sentinels in the shared package so errors.Is works alongside
// errors.As.
package services
