// Package pipeline provides the scan pipeline behind stackaudit.
//
// A scan walks a project tree for packages.config manifests, parses each
// one, resolves the license metadata of every declared package against a
// NuGet registry and collects the results in a [report.Set]:
//
//  1. Discover: [deps.FindManifests] lists the manifests below the root
//  2. Parse: each manifest becomes a list of declarations; broken manifests are skipped
//  3. Resolve: a [deps.Fetcher] looks up every declaration concurrently
//  4. Collect: each manifest's batch is added to the run's [report.Set]
//
// Only a failed discovery and cancellation end a run early. Everything else
// degrades: unreadable manifests are counted as skipped and failed lookups
// are recorded with the "unknown" license.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{Root: "./src"})
//	if err != nil {
//	    return err
//	}
//	report.Write(ctx, w, report.FormatFNCI, result.Set, meta)
package pipeline

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/deps/dotnet"
	"github.com/matzehuels/stackaudit/pkg/errors"
	"github.com/matzehuels/stackaudit/pkg/integrations/nuget"
	"github.com/matzehuels/stackaudit/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Callers
// =============================================================================

const (
	// DefaultRoot is the project root scanned when none is given.
	DefaultRoot = "."

	// DefaultManifestWorkers processes manifests one after another.
	DefaultManifestWorkers = 1

	// DefaultWorkers is the number of concurrent lookups per manifest.
	DefaultWorkers = deps.DefaultWorkers

	// DefaultTimeout bounds a single package lookup.
	DefaultTimeout = dotnet.DefaultTimeout

	// DefaultAPIURL is the registry queried when none is configured.
	DefaultAPIURL = nuget.DefaultAPIURL
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one scan.
type Options struct {
	Root            string        `json:"root"`
	APIURL          string        `json:"api_url,omitempty"`
	FrontendURL     string        `json:"frontend_url,omitempty"` // Default: derived from APIURL
	Workers         int           `json:"workers,omitempty"`
	ManifestWorkers int           `json:"manifest_workers,omitempty"`
	Timeout         time.Duration `json:"timeout,omitempty"`

	// Runtime options (not serialized)
	Logger     *log.Logger   `json:"-"`
	HTTPClient *http.Client  `json:"-"`
	Resolver   deps.Resolver `json:"-"` // Overrides the NuGet resolver built from the URLs

	// TracerProvider records the scan span and one span per lookup.
	// Default: the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider `json:"-"`

	// Progress is called after each manifest was processed, from the
	// goroutine that processed it.
	Progress func(Progress) `json:"-"`

	validated bool
}

// Progress reports one processed manifest.
type Progress struct {
	Manifest     string
	Declarations int
	Unknown      int
	Skipped      bool
}

// Result contains the outputs of a scan.
type Result struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// Set holds every resolved dependency of the run.
	Set *report.Set

	// Stats contains counts and timing.
	Stats Stats
}

// Stats contains scan statistics.
type Stats struct {
	Manifests    int // Manifests found, skipped ones included
	Skipped      int // Manifests that could not be read or parsed
	Dependencies int // Declarations across all parsed manifests
	Unique       int // Distinct (name, version) pairs
	Unknown      int // Records whose lookup failed
	Duration     time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if err := errors.ValidateURL(o.APIURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api url")
	}
	if o.FrontendURL != "" {
		if err := errors.ValidateURL(o.FrontendURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "frontend url")
		}
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.ManifestWorkers <= 0 {
		o.ManifestWorkers = DefaultManifestWorkers
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
