package pipeline

import (
	"path/filepath"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/deps/dotnet"
	"github.com/matzehuels/stackaudit/pkg/errors"
)

// ParseManifest reads the declarations of one manifest with the parser the
// .NET language registers for its file name.
func ParseManifest(path string) ([]deps.Declaration, error) {
	parser, ok := dotnet.Language.Manifest(filepath.Base(path))
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "no parser for manifest: %s", path)
	}
	return parser.Parse(path)
}
