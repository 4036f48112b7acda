package deps

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLookup = errors.New("network error")

func declarations(manifest string, names ...string) []Declaration {
	out := make([]Declaration, len(names))
	for i, n := range names {
		out[i] = Declaration{Name: n, Version: "1.0.0", Manifest: manifest}
	}
	return out
}

func okResult(name string) Result {
	return Result{Enrichment: Enrichment{
		License:     "https://licenses.example/" + name,
		ProjectURL:  "https://www.example/packages/" + name,
		Description: name + " library",
	}}
}

func TestFetchPreservesOrderAndLength(t *testing.T) {
	r := ResolverFunc(func(_ context.Context, name, _ string) Result {
		// Finish in reverse order of submission.
		time.Sleep(time.Duration(len(name)) * time.Millisecond)
		return okResult(name)
	})

	decls := declarations("/p/packages.config", "aaaaaaaaaa", "aaaaa", "a")
	got := NewFetcher(r, Options{Workers: 3}).Fetch(context.Background(), decls)

	require.Len(t, got, len(decls))
	for i, d := range got {
		assert.Equal(t, decls[i], d.Declaration)
		assert.Equal(t, okResult(decls[i].Name).Enrichment, d.Enrichment)
	}
}

func TestFetchDegradesFailures(t *testing.T) {
	r := ResolverFunc(func(_ context.Context, name, _ string) Result {
		if name == "bad1" || name == "bad2" {
			return Result{Enrichment: DefaultEnrichment(), Err: errLookup}
		}
		return okResult(name)
	})

	var mu sync.Mutex
	var warnings []string
	logger := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, format)
	}

	decls := declarations("/p/packages.config", "good1", "bad1", "good2", "bad2", "good3")
	got := NewFetcher(r, Options{Logger: logger}).Fetch(context.Background(), decls)

	require.Len(t, got, 5)
	assert.Equal(t, 2, Failed(got))
	assert.Len(t, warnings, 2)

	for _, d := range got {
		if d.Name == "bad1" || d.Name == "bad2" {
			assert.Equal(t, DefaultEnrichment(), d.Enrichment)
			assert.True(t, d.Unknown())
		} else {
			assert.False(t, d.Unknown())
		}
	}
}

func TestFetchIgnoresEnrichmentOfFailedResult(t *testing.T) {
	// A resolver that reports an error but leaves stale fields behind.
	r := ResolverFunc(func(context.Context, string, string) Result {
		return Result{Enrichment: Enrichment{License: "MIT", ProjectURL: "x"}, Err: errLookup}
	})

	got := NewFetcher(r, Options{}).Fetch(context.Background(), declarations("/m", "a"))
	assert.Equal(t, DefaultEnrichment(), got[0].Enrichment)
}

func TestFetchRecoversPanics(t *testing.T) {
	r := ResolverFunc(func(_ context.Context, name, _ string) Result {
		if name == "boom" {
			panic("resolver bug")
		}
		return okResult(name)
	})

	got := NewFetcher(r, Options{}).Fetch(context.Background(), declarations("/m", "ok", "boom"))
	require.Len(t, got, 2)
	assert.False(t, got[0].Unknown())
	assert.True(t, got[1].Unknown())
}

func TestFetchBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	r := ResolverFunc(func(_ context.Context, name, _ string) Result {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return okResult(name)
	})

	names := make([]string, 30)
	for i := range names {
		names[i] = string(rune('a' + i%26))
	}
	got := NewFetcher(r, Options{Workers: 4}).Fetch(context.Background(), declarations("/m", names...))

	assert.Len(t, got, 30)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestFetchSequentialWithOneWorker(t *testing.T) {
	var order []string
	r := ResolverFunc(func(_ context.Context, name, _ string) Result {
		order = append(order, name) // no lock: must never run concurrently
		return okResult(name)
	})

	names := []string{"zlib", "alpha", "mid", "beta"}
	NewFetcher(r, Options{Workers: 1}).Fetch(context.Background(), declarations("/m", names...))

	assert.Equal(t, names, order)
}

func TestFetchEmpty(t *testing.T) {
	r := ResolverFunc(func(context.Context, string, string) Result {
		t.Fatal("resolver must not be called")
		return Result{}
	})
	got := NewFetcher(r, Options{}).Fetch(context.Background(), nil)
	assert.Empty(t, got)
}

func TestFetchCancelledContextStillComplete(t *testing.T) {
	r := ResolverFunc(func(ctx context.Context, name, _ string) Result {
		if err := ctx.Err(); err != nil {
			return Result{Enrichment: DefaultEnrichment(), Err: err}
		}
		return okResult(name)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewFetcher(r, Options{}).Fetch(ctx, declarations("/m", "a", "b", "c"))
	require.Len(t, got, 3)
	assert.Equal(t, 3, Failed(got))
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	assert.Equal(t, DefaultWorkers, opts.Workers)
	assert.NotNil(t, opts.Logger)

	opts = Options{Workers: -3}.WithDefaults()
	assert.Equal(t, DefaultWorkers, opts.Workers)

	opts = Options{Workers: 1}.WithDefaults()
	assert.Equal(t, 1, opts.Workers)
}

func TestResultOK(t *testing.T) {
	assert.True(t, okResult("a").OK())
	assert.False(t, Result{Enrichment: DefaultEnrichment(), Err: errLookup}.OK())
}

func TestKeyIsComposite(t *testing.T) {
	a := Declaration{Name: "ab", Version: "1.0"}.Key()
	b := Declaration{Name: "a", Version: "b1.0"}.Key()
	assert.NotEqual(t, a, b)
	assert.Equal(t, "ab 1.0", a.String())
}
