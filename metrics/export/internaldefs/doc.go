// Package internaldefs holds the metric names, help strings and bucket bounds shared by
// the exporters.
//
// Both the Prometheus and OTel exporters iterate these tables, so a name changed here
// changes in every exporter at once.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
