// Package nuget provides an HTTP client for the NuGet v3 registration API.
//
// # Overview
//
// License metadata for one package version takes two requests. The
// registration leaf
//
//	GET {api}/v3/registration3/{lower(id)}/{semver2}.json
//
// names a catalog entry URL in its catalogEntry field, and the catalog entry
// carries licenseUrl (or licenseExpression for newer packages) and description.
//
// # Usage
//
//	client := nuget.NewClient(nuget.Options{
//	    APIURL: nuget.DefaultAPIURL,
//	    Cache:  cache.NewMemoryCache(),
//	})
//
//	entry, err := client.FetchCatalogEntry(ctx, "Newtonsoft.Json", "12.0.1")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(entry.License(), client.ProjectURL("Newtonsoft.Json", "12.0.1"))
//
// # Versions
//
// Registration leaves are keyed by the SemVer 2.0 form of a version. Legacy
// four-part versions whose revision is literally "0" lose the revision
// (see [SemVer2]); all other versions are used as written.
//
// # Caching
//
// Successful lookups are memoized in the [cache.Cache] passed in [Options].
// Failures are never cached, and nothing here persists across processes
// unless the caller supplies a persistent cache.
//
// [cache.Cache]: github.com/matzehuels/stackaudit/pkg/cache.Cache
package nuget
