// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains the shared transport used by registry clients.
// Each registry has its own subpackage:
//
//   - [nuget]: the NuGet v3 registration API
//
// # Client Pattern
//
// Registry clients embed a [Client] and expose typed fetch methods:
//
//	client := nuget.NewClient(nuget.Options{Cache: cache.NewMemoryCache()})
//	entry, err := client.FetchCatalogEntry(ctx, "Newtonsoft.Json", "12.0.1")
//
// Clients handle:
//   - HTTP requests with a fixed timeout and no retries
//   - Response caching through [cache.Cache]
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// [Client] emits [observability.HTTPHooks] events for every request and
// [observability.CacheHooks] events from [Client.Cached]. Any 2xx response is
// a success; 404 maps to [ErrNotFound] and every other failure to [ErrNetwork].
//
// # Adding a New Registry
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client on top of [NewClient]
//  4. Wire it into a [deps.Resolver]
//
// [nuget]: github.com/matzehuels/stackaudit/pkg/integrations/nuget
// [cache.Cache]: github.com/matzehuels/stackaudit/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/matzehuels/stackaudit/pkg/observability.HTTPHooks
// [observability.CacheHooks]: github.com/matzehuels/stackaudit/pkg/observability.CacheHooks
// [deps.Resolver]: github.com/matzehuels/stackaudit/pkg/deps.Resolver
package integrations
