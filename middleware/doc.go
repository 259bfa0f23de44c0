// Package middleware exposes HTTP adapters that attach the session's bearer token to
// outgoing requests and read it back on the server side.
//
// # Adapters
//
//   - [Bearer] wraps an [http.RoundTripper] and sets "Authorization: Bearer <token>"
//     while a token is held. [WithClearOn401] logs the session out when the server
//     rejects that token.
//   - [ParseBearer] extracts the token from an Authorization header value.
//
// # Architecture boundaries
//
// This package translates between HTTP headers and a token source. It does NOT own the
// token, persist it, or decide whether it is valid; those belong to the session and the
// server.
//
// # What this package must NOT do
//
//   - Import goConvert or session (token access goes through [TokenSource]).
//   - Log token values.
//   - Mutate the caller's *http.Request.
package middleware
