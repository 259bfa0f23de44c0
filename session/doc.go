// Package session holds the client's bearer token and its durable copy.
//
// [Session] is the single owner of the current token. It is passed by reference to every
// component that reads or mutates the token; there is no package-level token cell. An empty
// token is the only "logged out" state.
//
// # Durable storage
//
// The durable copy lives in a [Store] under one key (default "token"). Backends:
// [MemoryStore] (process lifetime), [RedisStore], [BoltStore] and [SQLiteStore]. Every
// backend treats Delete of a missing key as success.
//
// # Architecture boundaries
//
// This package owns token state and persistence. It does NOT perform the credential
// exchange, decide navigation, or parse JWTs; expiry inspection is injected through
// [Config.ExpiresAt].
//
// # What this package must NOT do
//
//   - Import goConvert, jwt, or flows (no upward imports).
//   - Persist credentials or anything other than the bearer token.
package session
