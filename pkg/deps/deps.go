package deps

const (
	DefaultWorkers = 20 // Default concurrent lookups per manifest

	// LicenseUnknown marks a dependency whose metadata lookup failed.
	LicenseUnknown = "unknown"
)

// Options configures a [Fetcher].
type Options struct {
	Workers int                  // Concurrent lookups (default: 20; 1 forces sequential)
	Logger  func(string, ...any) // Warning callback for failed lookups (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Declaration is one package entry read from a manifest, values verbatim.
type Declaration struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Manifest string `json:"manifest"` // Absolute path of the declaring manifest
}

// Key returns the deduplication key of the declaration.
func (d Declaration) Key() Key {
	return Key{Name: d.Name, Version: d.Version}
}

// Enrichment is the registry metadata attached to a declaration.
type Enrichment struct {
	License     string `json:"license"`     // License URL or expression, "unknown" on failure
	ProjectURL  string `json:"project_url"` // Gallery page, empty on failure
	Description string `json:"description"` // Empty on failure
}

// DefaultEnrichment is the enrichment of a failed lookup.
func DefaultEnrichment() Enrichment {
	return Enrichment{License: LicenseUnknown}
}

// Result is the outcome of one metadata lookup. A non-nil Err means
// Enrichment holds [DefaultEnrichment].
type Result struct {
	Enrichment
	Err error
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Dependency is a declaration together with its resolved metadata.
type Dependency struct {
	Declaration
	Enrichment
}

// Unknown reports whether the dependency carries the failure default.
func (d Dependency) Unknown() bool { return d.License == LicenseUnknown }

// Key identifies a package version across manifests. Being a struct, it
// cannot collide the way concatenated name+version strings can.
type Key struct {
	Name    string
	Version string
}

func (k Key) String() string { return k.Name + " " + k.Version }
