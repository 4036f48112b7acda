package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackaudit/pkg/cache"
	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/deps/dotnet"
	"github.com/matzehuels/stackaudit/pkg/integrations/nuget"
	"github.com/matzehuels/stackaudit/pkg/observability"
	"github.com/matzehuels/stackaudit/pkg/report"
)

const tracerName = "github.com/matzehuels/stackaudit/pkg/pipeline"

// Runner executes scans.
//
// The cache memoizes successful lookups for as long as the Runner lives;
// callers decide its lifetime (the CLI uses one per run). A Runner keeps no
// other state, so several goroutines may run scans with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables lookup memoization.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs a complete scan.
//
// It fails only when the root cannot be scanned, the options are invalid,
// or ctx is cancelled. Manifests that cannot be parsed are skipped and
// counted in [Stats.Skipped].
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])

	ctx, span := tracerProvider(opts).Tracer(tracerName).Start(ctx, "stackaudit.scan", trace.WithAttributes(
		attribute.String("scan.root", opts.Root),
		attribute.String("scan.run_id", runID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("scan.manifests", result.Stats.Manifests),
				attribute.Int("scan.unknown", result.Stats.Unknown),
			)
		}
		span.End()
	}()

	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnScanStart(ctx, opts.Root)

	manifests, err := deps.FindManifests(opts.Root)
	if err != nil {
		hooks.OnScanComplete(ctx, opts.Root, 0, 0, time.Since(start), err)
		return nil, err
	}

	fetcher := deps.NewFetcher(r.resolver(opts), deps.Options{
		Workers: opts.Workers,
		Logger:  logger.Warnf,
	})

	set := report.NewSet()
	var found, skipped atomic.Int64

	var g errgroup.Group
	g.SetLimit(opts.ManifestWorkers)
	for path := range manifests {
		if ctx.Err() != nil {
			break
		}
		found.Add(1)
		g.Go(func() error {
			if !r.scanManifest(ctx, logger, fetcher, set, path, opts.Progress) {
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		hooks.OnScanComplete(ctx, opts.Root, int(found.Load()), set.Len(), time.Since(start), err)
		return nil, err
	}

	result = &Result{
		RunID: runID,
		Set:   set,
		Stats: Stats{
			Manifests:    int(found.Load()),
			Skipped:      int(skipped.Load()),
			Dependencies: set.Len(),
			Unique:       len(set.Unique()),
			Unknown:      set.Unknown(),
			Duration:     time.Since(start),
		},
	}
	hooks.OnScanComplete(ctx, opts.Root, result.Stats.Manifests, result.Stats.Dependencies, result.Stats.Duration, nil)

	logger.Info("scan complete",
		"manifests", result.Stats.Manifests,
		"skipped", result.Stats.Skipped,
		"dependencies", result.Stats.Dependencies,
		"unknown", result.Stats.Unknown,
		"duration", result.Stats.Duration.Round(time.Millisecond))

	return result, nil
}

// scanManifest parses and resolves one manifest. It returns false if the
// manifest was skipped.
func (r *Runner) scanManifest(ctx context.Context, logger *log.Logger, fetcher *deps.Fetcher, set *report.Set, path string, progress func(Progress)) bool {
	decls, err := ParseManifest(path)
	observability.Pipeline().OnManifestParsed(ctx, path, len(decls), err)
	if err != nil {
		logger.Warn("skipping manifest", "path", path, "err", err)
		if progress != nil {
			progress(Progress{Manifest: path, Skipped: true})
		}
		return false
	}
	logger.Debug("parsed manifest", "path", path, "packages", len(decls))

	batch := fetcher.Fetch(ctx, decls)
	set.Add(batch)

	if progress != nil {
		progress(Progress{Manifest: path, Declarations: len(batch), Unknown: deps.Failed(batch)})
	}
	return true
}

func (r *Runner) resolver(opts Options) deps.Resolver {
	if opts.Resolver != nil {
		return opts.Resolver
	}
	client := nuget.NewClient(nuget.Options{
		APIURL:      opts.APIURL,
		FrontendURL: opts.FrontendURL,
		Cache:       r.Cache,
		HTTPClient:  opts.HTTPClient,
	})
	return dotnet.NewResolver(client, opts.Timeout, dotnet.WithTracerProvider(opts.TracerProvider))
}

func tracerProvider(opts Options) trace.TracerProvider {
	if opts.TracerProvider != nil {
		return opts.TracerProvider
	}
	return otel.GetTracerProvider()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
