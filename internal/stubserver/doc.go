// Package stubserver is a self-contained stand-in for the conversion and token
// services the goConvert client talks to.
//
// It serves the two wire contracts the client consumes:
//
//	POST /token                              form-encoded password grant
//	GET  /currencies/convert/{from}/{to}     ?amount=<decimal>
//
// plus GET /users/me for checking a bearer token by hand. Users are held in
// memory with argon2id password hashes. Failed logins can be throttled per
// username through Redis counters.
//
// # Architecture boundaries
//
// The server depends on the jwt and middleware packages for token issuance and
// bearer parsing. It never imports the client root package so the client's tests
// can run against it without an import cycle.
//
// # What this package must NOT do
//
//   - Persist users or tokens.
//   - Log passwords or issued tokens.
package stubserver
