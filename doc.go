// Package goConvert is a client library for a currency-conversion service: a debounced
// converter that queries the conversion API, and a session flow that exchanges
// credentials for a bearer token, keeps it durably and navigates once it is held.
//
// Build a [Client] with [New] and [Builder.Build]. The Client owns one
// [session.Session]; every converter and login form it creates reads and writes the
// token through that session, never through a global.
//
// # Architecture boundaries
//
// goConvert is the public surface. It exposes [Client], [Builder], [Config], [LoginForm]
// and value types (Banner, SubmitResult, MetricsSnapshot). Request building and error
// classification live in internal/flows; token state and storage live in session; the
// debounce and ordering state machine lives in converter.
//
// # What this package must NOT do
//
//   - Return errors from LoginForm.Submit; failures surface through the banner.
//   - Persist credentials, or log tokens or passwords.
//   - Send a network request on logout.
//   - Import any sub-package that re-imports goConvert (no import cycles).
package goConvert
