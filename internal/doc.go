// Package internal holds code private to the goConvert module.
//
// # Sub-packages
//
//   - flows: the HTTP wire contracts for conversion and token exchange, plus
//     failure classification into banner text
//   - stubserver: an in-process stand-in for the conversion and token services,
//     used by tests, the CLI tests and examples/stub-backend
//
// # What this package must NOT do
//
//   - Export types that appear in the public goConvert API.
//   - Be imported by any package outside the goConvert module.
package internal
