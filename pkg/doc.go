// Package pkg provides the libraries behind stackaudit, a NuGet license
// auditor for .NET source trees.
//
// # Overview
//
// A scan walks a directory tree, parses every packages.config it finds,
// looks up the license of each declared package in a NuGet v3 registry and
// writes a report that can be imported into FlexNet Code Insight (FNCI).
//
//	source tree
//	     ↓
//	[deps] FindManifests + [deps/dotnet] parser
//	     ↓
//	[deps] Fetcher → [deps/dotnet] Resolver → [integrations/nuget] Client
//	     ↓
//	[report] Set (dedupe + ordering)
//	     ↓
//	[report] FNCI / JSON / DOT / SVG → [sink] file, stdout or S3
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{Root: "./src"})
//	if err != nil {
//	    return err
//	}
//	meta := report.NewMeta(result.RunID, "jdoe")
//	err = report.Write(ctx, os.Stdout, report.FormatFNCI, result.Set, meta)
//
// # Main Packages
//
// [pipeline] - Runs a complete scan. Used by the CLI.
//
// [deps] - Manifest discovery, dependency types and the concurrent fetcher.
// Lookups never fail a scan: a failed lookup yields the license "unknown".
//
// [deps/dotnet] - The packages.config parser and the NuGet-backed resolver.
//
// [integrations/nuget] - The two-request registry lookup (registration leaf,
// then catalog entry). [integrations/nuget/nugettest] is an in-process
// registry for tests.
//
// [report] - The deduplicated dependency set and its renderings.
//
// [sink] - Report destinations.
//
// [cache] - Lookup memoization. [observability] - Hooks for metrics and
// tracing; [observability/prom] implements them with Prometheus.
//
// [errors] - Error codes shared by all packages.
//
// # Testing
//
//	go test ./...                              # All tests
//	go test -tags integration ./pkg/integrations/...  # Against api.nuget.org
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/pipeline
// [deps]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/deps
// [deps/dotnet]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/deps/dotnet
// [integrations/nuget]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/integrations/nuget
// [integrations/nuget/nugettest]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/integrations/nuget/nugettest
// [report]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/report
// [sink]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackaudit/pkg/errors
package pkg
