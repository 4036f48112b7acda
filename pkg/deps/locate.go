package deps

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/matzehuels/stackaudit/pkg/errors"
)

// ManifestFilename is the only manifest name the locator matches.
const ManifestFilename = "packages.config"

// FindManifests lists every file named [ManifestFilename] below root,
// hidden directories included, as absolute paths in lexical walk order.
// A symlinked root is resolved first and paths are reported below its target.
//
// The tree is walked lazily each time the sequence is ranged over.
// Subdirectories that cannot be read are skipped. A root that is missing,
// not a directory, or unreadable is a DISCOVERY_FAILED error; a tree without
// manifests is an empty sequence.
func FindManifests(root string) (iter.Seq[string], error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiscovery, err, "resolve project root %q", root)
	}
	// WalkDir does not descend into a root that is itself a symlink.
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiscovery, err, "project root %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiscovery, err, "project root %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeDiscovery, "project root %s is not a directory", abs)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiscovery, err, "read project root %s", abs)
	}

	return func(yield func(string) bool) {
		_ = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || d.Name() != ManifestFilename {
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}, nil
}
