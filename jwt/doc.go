// Package jwt reads and mints bearer tokens for goConvert.
//
// A client never holds the issuer's verification key, so [Inspect] decodes claims without
// verifying the signature. It is only used to read expiry hints (for example to drop a
// restored token that is already past exp). [Issuer] signs and verifies tokens for the stub
// backend and for tests.
//
// # What this package must NOT do
//
//   - Treat an unverified token as proof of identity.
//   - Import goConvert or session (no upward imports).
package jwt
