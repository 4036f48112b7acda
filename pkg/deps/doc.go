// Package deps provides manifest discovery and concurrent metadata lookup
// for declared package dependencies.
//
// # Overview
//
// stackaudit builds license reports for .NET projects that declare their
// NuGet dependencies in packages.config files. This package holds the
// ecosystem-neutral parts of that flow:
//
//   - [FindManifests] walks a project tree for manifests
//   - [ManifestParser] turns one manifest into [Declaration] values
//   - [Fetcher] resolves declarations through a [Resolver] with bounded concurrency
//
// The NuGet specifics live in [dotnet] (parser and resolver) and
// [integrations/nuget] (registry protocol).
//
// # Architecture
//
// The lookup stack has three layers:
//
//  1. Integrations ([integrations]): Low-level HTTP clients for each registry API
//  2. Ecosystem bindings ([dotnet]): manifest parsing and the [Resolver] boundary
//  3. Pipeline ([pipeline]): discovery, per-manifest fetch, aggregation
//
// # Failure Model
//
// A lookup never fails its caller. [Resolver] implementations report problems
// in [Result.Err] and the [Fetcher] replaces the enrichment with
// [DefaultEnrichment] (license "unknown"), so every declaration is present in
// the output whether or not its lookup worked:
//
//	f := deps.NewFetcher(resolver, deps.Options{Workers: 20, Logger: logger.Warnf})
//	resolved := f.Fetch(ctx, decls) // len(resolved) == len(decls)
//	fmt.Println(deps.Failed(resolved), "lookups failed")
//
// # Options
//
// [Options] controls the fetcher:
//
//   - Workers: concurrent lookups per manifest (default 20, 1 = sequential)
//   - Logger: warning callback for failed lookups
//
// # Identity
//
// Dependencies are deduplicated on [Key], the (name, version) pair. Names
// and versions are compared exactly as declared.
//
// [integrations]: github.com/matzehuels/stackaudit/pkg/integrations
// [integrations/nuget]: github.com/matzehuels/stackaudit/pkg/integrations/nuget
// [dotnet]: github.com/matzehuels/stackaudit/pkg/deps/dotnet
// [pipeline]: github.com/matzehuels/stackaudit/pkg/pipeline
package deps
