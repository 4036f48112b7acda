package cli

import (
	"bytes"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackaudit/pkg/errors"
	"github.com/matzehuels/stackaudit/pkg/integrations/nuget"
	"github.com/matzehuels/stackaudit/pkg/pipeline"
	"github.com/matzehuels/stackaudit/pkg/report"
)

// Environment variables read by scan.
const (
	envAPIURL      = "NUGET_API_URL"
	envFrontendURL = "NUGET_FRONTEND_URL"
)

// fileConfig is the on-disk configuration. Empty strings and nil counts
// mean "not set"; an explicit 0 count is kept so validation can reject it.
type fileConfig struct {
	APIURL          string `toml:"api_url" yaml:"api_url"`
	FrontendURL     string `toml:"frontend_url" yaml:"frontend_url"`
	Owner           string `toml:"owner" yaml:"owner"`
	Workers         *int   `toml:"workers" yaml:"workers"`
	ManifestWorkers *int   `toml:"manifest_workers" yaml:"manifest_workers"`
	Timeout         string `toml:"timeout" yaml:"timeout"` // Go duration, e.g. "5s"
	Format          string `toml:"format" yaml:"format"`
	Output          string `toml:"output" yaml:"output"`
}

// config is the resolved scan configuration.
type config struct {
	APIURL          string
	FrontendURL     string
	Owner           string
	Workers         int
	ManifestWorkers int
	Timeout         time.Duration
	Format          report.Format
	Output          string
}

// loadConfigFile decodes a TOML or YAML file, chosen by extension.
func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return fc, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fc, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && err != io.EOF {
			return fc, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
	default:
		return fc, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return fc, nil
}

// envConfig reads the settings that may come from the environment.
func envConfig(getenv func(string) string) fileConfig {
	return fileConfig{
		APIURL:      getenv(envAPIURL),
		FrontendURL: getenv(envFrontendURL),
	}
}

// overlay returns base with every field set in top replacing its counterpart.
func overlay(base, top fileConfig) fileConfig {
	if top.APIURL != "" {
		base.APIURL = top.APIURL
	}
	if top.FrontendURL != "" {
		base.FrontendURL = top.FrontendURL
	}
	if top.Owner != "" {
		base.Owner = top.Owner
	}
	if top.Workers != nil {
		base.Workers = top.Workers
	}
	if top.ManifestWorkers != nil {
		base.ManifestWorkers = top.ManifestWorkers
	}
	if top.Timeout != "" {
		base.Timeout = top.Timeout
	}
	if top.Format != "" {
		base.Format = top.Format
	}
	if top.Output != "" {
		base.Output = top.Output
	}
	return base
}

// resolveConfig merges the layers in increasing precedence: defaults,
// config file, environment, flags. It validates the result.
func resolveConfig(path string, flags fileConfig, getenv func(string) string) (config, error) {
	merged := fileConfig{
		APIURL:          pipeline.DefaultAPIURL,
		Workers:         ptr(pipeline.DefaultWorkers),
		ManifestWorkers: ptr(pipeline.DefaultManifestWorkers),
		Timeout:         pipeline.DefaultTimeout.String(),
		Format:          string(report.FormatFNCI),
	}
	if path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return config{}, err
		}
		merged = overlay(merged, fc)
	}
	merged = overlay(merged, envConfig(getenv))
	merged = overlay(merged, flags)

	cfg := config{
		APIURL:          strings.TrimRight(merged.APIURL, "/"),
		FrontendURL:     strings.TrimRight(merged.FrontendURL, "/"),
		Owner:           merged.Owner,
		Workers:         *merged.Workers,
		ManifestWorkers: *merged.ManifestWorkers,
		Output:          merged.Output,
	}

	if err := errors.ValidateURL(cfg.APIURL); err != nil {
		return config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "api url")
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = nuget.DefaultFrontendURL(cfg.APIURL)
	}
	if err := errors.ValidateURL(cfg.FrontendURL); err != nil {
		return config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "frontend url")
	}
	if cfg.Workers < 1 {
		return config{}, errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.ManifestWorkers < 1 {
		return config{}, errors.New(errors.ErrCodeInvalidConfig, "manifest workers must be at least 1, got %d", cfg.ManifestWorkers)
	}

	timeout, err := time.ParseDuration(merged.Timeout)
	if err != nil || timeout <= 0 {
		return config{}, errors.New(errors.ErrCodeInvalidConfig, "invalid timeout %q", merged.Timeout)
	}
	cfg.Timeout = timeout

	format, err := report.ParseFormat(merged.Format)
	if err != nil {
		return config{}, err
	}
	cfg.Format = format

	if cfg.Owner == "" {
		cfg.Owner = currentUser(getenv)
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput(format)
	}
	return cfg, nil
}

// defaultOutput names the report file for a format.
func defaultOutput(f report.Format) string {
	return strings.TrimSuffix(report.DefaultFilename, ".xml") + f.Extension()
}

// currentUser returns the login name used as report owner.
func currentUser(getenv func(string) string) string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

func ptr[T any](v T) *T { return &v }
