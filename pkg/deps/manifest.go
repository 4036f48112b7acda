package deps

import (
	"fmt"
	"path/filepath"
)

// ManifestParser reads package declarations from local manifest files.
type ManifestParser interface {
	// Parse reads the manifest at path and returns its declarations in
	// document order. Malformed manifests yield an INVALID_MANIFEST error.
	Parse(path string) ([]Declaration, error)
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Type returns the manifest type identifier (e.g., "packages.config").
	Type() string
}

// DetectManifest finds a parser that supports the given file path.
// Returns an error if no parser matches.
func DetectManifest(path string, parsers ...ManifestParser) (ManifestParser, error) {
	name := filepath.Base(path)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest: %s", name)
}
