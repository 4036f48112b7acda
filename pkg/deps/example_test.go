package deps_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/stackaudit/pkg/deps"
)

func ExampleOptions_WithDefaults() {
	// Zero values are replaced with defaults
	opts := deps.Options{}.WithDefaults()

	fmt.Println("Workers:", opts.Workers)
	// Output:
	// Workers: 20
}

func ExampleDefaultEnrichment() {
	// A failed lookup is reported with the unknown license
	e := deps.DefaultEnrichment()
	fmt.Printf("license=%q url=%q description=%q\n", e.License, e.ProjectURL, e.Description)
	// Output:
	// license="unknown" url="" description=""
}

func ExampleFetcher_Fetch() {
	resolver := deps.ResolverFunc(func(_ context.Context, name, version string) deps.Result {
		if name == "Missing" {
			return deps.Result{Enrichment: deps.DefaultEnrichment(), Err: fmt.Errorf("not found")}
		}
		return deps.Result{Enrichment: deps.Enrichment{License: "MIT"}}
	})

	decls := []deps.Declaration{
		{Name: "Newtonsoft.Json", Version: "12.0.1", Manifest: "/src/App/packages.config"},
		{Name: "Missing", Version: "1.0.0", Manifest: "/src/App/packages.config"},
	}

	f := deps.NewFetcher(resolver, deps.Options{Workers: 1})
	for _, d := range f.Fetch(context.Background(), decls) {
		fmt.Println(d.Name, d.License)
	}
	// Output:
	// Newtonsoft.Json MIT
	// Missing unknown
}

func ExampleKey() {
	// Keys compare as pairs, so boundary-shifted names never collide
	a := deps.Declaration{Name: "ab", Version: "1.0"}.Key()
	b := deps.Declaration{Name: "a", Version: "b1.0"}.Key()
	fmt.Println(a == b)
	// Output:
	// false
}
