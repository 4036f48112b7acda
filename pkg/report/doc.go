// Package report aggregates resolved dependencies and renders compliance reports.
//
// # Aggregation
//
// A [Set] collects one batch of [deps.Dependency] values per manifest. Batches
// may arrive from concurrent goroutines in any order; every view is derived
// from a canonical order (manifest path, then declaration order) so output
// never depends on scheduling:
//
//   - [Set.All]: every record
//   - [Set.Unique]: one record per (name, version), first occurrence wins, sorted by name
//   - [Set.Grouped]: records per manifest, largest manifest first
//
// # Formats
//
// [Write] renders a set in one of the [Format] values:
//
//   - fnci: Palamida / FlexNet Code Insight workspace import XML (default)
//   - json: machine-readable report with run metadata
//   - dot:  Graphviz source of the manifest to dependency graph
//   - svg:  the same graph rendered with Graphviz
//
// [deps.Dependency]: github.com/matzehuels/stackaudit/pkg/deps.Dependency
package report
