// Package flows contains pure-function orchestrators for every Client network operation.
//
// Each flow function (RunConvert, RunTokenExchange, RunLogout) accepts a typed dependency
// struct and returns results without side-effects beyond those dependencies. Failures are
// reduced to a [Failure] by [Classify] so callers can render them without inspecting
// transport errors.
//
// # Architecture boundaries
//
// Flow functions build requests, decode responses and classify errors. They do NOT own
// the HTTP client, the session, metrics or audit. The Client owns them.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goConvert (to avoid import cycles).
//   - Log credentials or tokens.
package flows
