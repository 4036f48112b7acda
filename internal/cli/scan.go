package cli

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/stackaudit/pkg/observability"
	"github.com/matzehuels/stackaudit/pkg/observability/prom"
	"github.com/matzehuels/stackaudit/pkg/pipeline"
	"github.com/matzehuels/stackaudit/pkg/report"
	"github.com/matzehuels/stackaudit/pkg/sink"
)

// scanOpts holds the scan command flags.
type scanOpts struct {
	config          string
	output          string
	format          string
	owner           string
	apiURL          string
	frontendURL     string
	workers         int
	manifestWorkers int
	timeout         string
	noCache         bool
	metricsFile     string
	logFile         string
	traceFile       string
	interactive     bool
}

// overrides returns the settings given explicitly on the command line.
func (o scanOpts) overrides(flags *pflag.FlagSet) fileConfig {
	var fc fileConfig
	if flags.Changed("api-url") {
		fc.APIURL = o.apiURL
	}
	if flags.Changed("frontend-url") {
		fc.FrontendURL = o.frontendURL
	}
	if flags.Changed("owner") {
		fc.Owner = o.owner
	}
	if flags.Changed("workers") {
		fc.Workers = ptr(o.workers)
	}
	if flags.Changed("manifest-workers") {
		fc.ManifestWorkers = ptr(o.manifestWorkers)
	}
	if flags.Changed("timeout") {
		fc.Timeout = o.timeout
	}
	if flags.Changed("format") {
		fc.Format = o.format
	}
	if flags.Changed("output") {
		fc.Output = o.output
	}
	return fc
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a source tree and write a license report",
		Long: `Scan finds every packages.config below path (default: the current directory),
looks up the license of each declared NuGet package and writes a report.

Packages whose lookup fails are reported with the license "unknown".
Manifests that cannot be parsed are skipped with a warning.

Settings are taken from flags, then the environment (NUGET_API_URL,
NUGET_FRONTEND_URL), then --config (TOML or YAML), then defaults.`,
		Example: `  # FNCI import file for the current tree
  stackaudit scan

  # JSON report on stdout for another tree
  stackaudit scan ./src -f json -o -

  # Upload to S3 using an internal feed
  stackaudit scan --api-url https://nuget.internal.example -o s3://audits/nuget.xml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := pipeline.DefaultRoot
			if len(args) == 1 {
				root = args[0]
			}
			return c.runScan(cmd.Context(), root, opts, opts.overrides(cmd.Flags()))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report destination: file, - for stdout, or s3://bucket/key (default "+report.DefaultFilename+")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatFNCI), "report format: fnci, json, dot, svg")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner recorded in the report (default: current user)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", pipeline.DefaultAPIURL, "NuGet registry API URL")
	cmd.Flags().StringVar(&opts.frontendURL, "frontend-url", "", "NuGet gallery URL for project links (default: derived from --api-url)")
	cmd.Flags().IntVar(&opts.workers, "workers", pipeline.DefaultWorkers, "concurrent lookups per manifest")
	cmd.Flags().IntVar(&opts.manifestWorkers, "manifest-workers", pipeline.DefaultManifestWorkers, "manifests processed concurrently")
	cmd.Flags().StringVar(&opts.timeout, "timeout", pipeline.DefaultTimeout.String(), "timeout of a single package lookup")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (.toml, .yaml)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not reuse lookups of the same package within the run")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "also write log output to this file")
	cmd.Flags().StringVar(&opts.traceFile, "trace-file", "", "write OpenTelemetry spans as JSON to this path")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the results after the scan")

	return cmd
}

// runScan executes a scan and writes the report.
func (c *CLI) runScan(ctx context.Context, root string, opts scanOpts, flags fileConfig) error {
	cfg, err := resolveConfig(opts.config, flags, c.getenv)
	if err != nil {
		return err
	}

	if opts.logFile != "" {
		restore, err := teeLogFile(c.Logger, c.stderr, opts.logFile)
		if err != nil {
			return err
		}
		defer restore()
	}

	if opts.metricsFile != "" {
		metrics := prom.New()
		metrics.Register()
		defer observability.Reset()
		defer func() {
			if werr := metrics.WriteTextfile(opts.metricsFile); werr != nil {
				c.Logger.Warn("could not write metrics", "path", opts.metricsFile, "err", werr)
			}
		}()
	}

	var tracerProvider trace.TracerProvider
	if opts.traceFile != "" {
		tp, shutdown, err := newFileTracer(opts.traceFile)
		if err != nil {
			return err
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil {
				c.Logger.Warn("could not write traces", "path", opts.traceFile, "err", serr)
			}
		}()
		tracerProvider = tp
	}

	c.Logger.Debug("configuration",
		"api", cfg.APIURL,
		"frontend", cfg.FrontendURL,
		"workers", cfg.Workers,
		"manifest_workers", cfg.ManifestWorkers,
		"timeout", cfg.Timeout)

	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning "+root+"...")
	spinner.w = c.stderr
	spinner.Start()

	var processed atomic.Int64
	result, err := runner.Execute(ctx, pipeline.Options{
		Root:            root,
		APIURL:          cfg.APIURL,
		FrontendURL:     cfg.FrontendURL,
		Workers:         cfg.Workers,
		ManifestWorkers: cfg.ManifestWorkers,
		Timeout:         cfg.Timeout,
		TracerProvider:  tracerProvider,
		Progress: func(pipeline.Progress) {
			spinner.SetMessage(fmt.Sprintf("Processed %d manifests...", processed.Add(1)))
		},
	})
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Scanned %d manifests in %s", result.Stats.Manifests, result.Stats.Duration.Round(time.Millisecond)))

	if result.Stats.Manifests == 0 {
		c.Logger.Warn("no manifests found", "root", root)
	}

	prog := newProgress(c.Logger)
	target, err := c.writeReport(ctx, cfg, result)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("wrote %s report to %s", cfg.Format, target))

	status := c.stdout
	if target.Kind == sink.KindStdout {
		status = c.stderr
	}
	printSummary(status, result.Stats, result.Set.Unique())
	if target.Kind != sink.KindStdout {
		printFile(status, target.String())
	}
	if result.Stats.Unknown > 0 {
		printWarning(status, "%d dependencies have no license information", result.Stats.Unknown)
	}

	if opts.interactive {
		if _, err := tea.NewProgram(NewReportModel(result.Set), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("report browser: %w", err)
		}
	}
	return nil
}

// writeReport renders the result to the configured destination.
func (c *CLI) writeReport(ctx context.Context, cfg config, result *pipeline.Result) (sink.Target, error) {
	target, err := sink.Parse(cfg.Output)
	if err != nil {
		return target, err
	}

	w, err := sink.Open(ctx, cfg.Output, sink.Options{
		ContentType: cfg.Format.ContentType(),
		Stdout:      c.stdout,
	})
	if err != nil {
		return target, err
	}

	meta := report.NewMeta(result.RunID, cfg.Owner)
	if err := report.Write(ctx, w, cfg.Format, result.Set, meta); err != nil {
		_ = w.Abort()
		return target, err
	}
	if err := w.Close(); err != nil {
		return target, fmt.Errorf("close report: %w", err)
	}
	return target, nil
}
