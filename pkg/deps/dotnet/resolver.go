package dotnet

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/errors"
	"github.com/matzehuels/stackaudit/pkg/integrations/nuget"
	"github.com/matzehuels/stackaudit/pkg/observability"
)

const (
	// DefaultTimeout bounds a single two-request lookup.
	DefaultTimeout = 5 * time.Second

	tracerName = "github.com/matzehuels/stackaudit/pkg/deps/dotnet"
)

// Resolver implements [deps.Resolver] on top of a NuGet client.
type Resolver struct {
	client  *nuget.Client
	timeout time.Duration
	tracer  trace.Tracer
}

var _ deps.Resolver = (*Resolver)(nil)

// Option configures a [Resolver].
type Option func(*Resolver)

// WithTracerProvider records lookup spans with tp instead of the global
// OpenTelemetry provider. A nil tp is ignored.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewResolver creates a Resolver. A timeout <= 0 selects [DefaultTimeout].
func NewResolver(client *nuget.Client, timeout time.Duration, opts ...Option) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Resolver{
		client:  client,
		timeout: timeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up license, project URL and description for one package
// version. It never fails: errors are carried in the result next to
// [deps.DefaultEnrichment].
func (r *Resolver) Resolve(ctx context.Context, name, version string) deps.Result {
	ctx, span := r.tracer.Start(ctx, "nuget.lookup", trace.WithAttributes(
		attribute.String("package.name", name),
		attribute.String("package.version", version),
	))
	defer span.End()

	start := time.Now()
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entry, err := r.client.FetchCatalogEntry(lookupCtx, name, version)
	if err != nil {
		err = r.classify(lookupCtx, name, version, err)
	}
	observability.Pipeline().OnLookupComplete(ctx, name, version, time.Since(start), err)

	span.SetAttributes(attribute.Bool("lookup.ok", err == nil))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return deps.Result{Enrichment: deps.DefaultEnrichment(), Err: err}
	}
	span.SetStatus(codes.Ok, "")

	return deps.Result{Enrichment: deps.Enrichment{
		License:     entry.License(),
		ProjectURL:  r.client.ProjectURL(name, version),
		Description: entry.Description,
	}}
}

func (r *Resolver) classify(ctx context.Context, name, version string, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = errors.Wrap(errors.ErrCodeTimeout, err, "no answer within %s", r.timeout)
	}
	return errors.Wrap(errors.ErrCodeLookup, err, "lookup %s %s", name, version)
}
