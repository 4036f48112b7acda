// Package cli implements the stackaudit command-line interface.
//
// # Commands
//
//   - scan: find packages.config manifests, resolve licenses and write a report
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. scan also
// accepts --log-file to keep a copy of the log.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackaudit/pkg/buildinfo"
	"github.com/matzehuels/stackaudit/pkg/cache"
	"github.com/matzehuels/stackaudit/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and default paths.
const appName = "stackaudit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stdout io.Writer // Summaries and reports written to "-"
	stderr io.Writer // Log output and spinner
	getenv func(string) string
}

// New creates a new CLI instance that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdout: os.Stdout,
		stderr: w,
		getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "stackaudit reports the licenses of NuGet dependencies",
		Long: `stackaudit scans a source tree for NuGet packages.config manifests, looks up
the license of every declared package in a NuGet registry and writes a
compliance report (FNCI workspace import, JSON, DOT or SVG).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for one CLI run. Lookups are memoized
// in memory for the lifetime of the runner only.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	var cc cache.Cache
	if noCache {
		cc = cache.NewNullCache()
	} else {
		cc = cache.NewMemoryCache()
	}
	return pipeline.NewRunner(cc, c.Logger)
}
