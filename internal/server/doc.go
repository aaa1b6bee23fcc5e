// Package server provides HTTP routing, middleware, and the login callback handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Callback Handler
//
// [CallbackHandler] receives the token payload produced by the sign-in flow.
//
// The backend appends the token to the callback address as a URL fragment,
// which never reaches a server; the handler therefore serves a small bridge
// page that re-issues location.hash as query parameters (clearing the
// fragment via history.replaceState) and parses the token from the second
// request. With an oauth2 config attached it instead exchanges an
// authorization code directly (the --direct flow), validating the state
// parameter for CSRF protection.
//
// The handler processes one callback only and delivers exactly one result
// through its channel.
//
// # Current Usage
//
// When the user runs `tvx auth login`, a temporary HTTP server starts on the
// configured localhost port, handles the callback, and shuts down after the
// token arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
