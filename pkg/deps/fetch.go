package deps

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Resolver looks up registry metadata for one package version.
//
// Implementations must not fail outward: every problem is reported through
// [Result.Err] next to [DefaultEnrichment].
type Resolver interface {
	Resolve(ctx context.Context, name, version string) Result
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, name, version string) Result

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, name, version string) Result {
	return f(ctx, name, version)
}

// Fetcher resolves the declarations of one manifest concurrently.
type Fetcher struct {
	resolver Resolver
	opts     Options
}

// NewFetcher creates a Fetcher backed by r.
func NewFetcher(r Resolver, opts Options) *Fetcher {
	return &Fetcher{resolver: r, opts: opts.WithDefaults()}
}

// Fetch resolves every declaration and returns once all lookups finished.
// The result has one Dependency per declaration, at the same index. Failed
// lookups are logged and carry [DefaultEnrichment]; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, decls []Declaration) []Dependency {
	out := make([]Dependency, len(decls))

	var g errgroup.Group
	g.SetLimit(f.opts.Workers)
	for i, d := range decls {
		g.Go(func() error {
			out[i] = Dependency{Declaration: d, Enrichment: f.resolve(ctx, d)}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (f *Fetcher) resolve(ctx context.Context, d Declaration) (e Enrichment) {
	defer func() {
		if r := recover(); r != nil {
			f.opts.Logger("lookup panicked: %s %s: %v", d.Name, d.Version, r)
			e = DefaultEnrichment()
		}
	}()

	res := f.resolver.Resolve(ctx, d.Name, d.Version)
	if !res.OK() {
		f.opts.Logger("lookup failed: %s %s (%s): %v", d.Name, d.Version, d.Manifest, res.Err)
		return DefaultEnrichment()
	}
	return res.Enrichment
}

// Failed counts dependencies that carry the unknown-license default.
func Failed(ds []Dependency) int {
	n := 0
	for _, d := range ds {
		if d.Unknown() {
			n++
		}
	}
	return n
}
