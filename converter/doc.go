// Package converter implements the debounced currency converter.
//
// A [Converter] owns the selected currency pair, the raw and settled amounts and the last
// conversion result. Amount edits are coalesced by a [Debouncer]; only the settled value
// builds requests. Currency changes and [Converter.Switch] issue a request immediately.
//
// # Ordering
//
// Every request carries a monotonically increasing sequence number. Issuing a request
// cancels the one before it, and a response is applied only when its sequence number is
// still the latest issued. A slow response can therefore never overwrite a newer one.
//
// # Architecture boundaries
//
// The package does not speak HTTP. Requests go through a [Fetcher]; the root package
// adapts the conversion flow into one and feeds [Observer] hooks into its metrics.
//
// # What this package must NOT do
//
//   - Import goConvert or internal/flows.
//   - Clear the last good result on failure.
//   - Call OnChange while holding its lock.
package converter
