package dotnet

import "github.com/matzehuels/stackaudit/pkg/deps"

// Language provides .NET dependency discovery via packages.config files
// resolved against NuGet.
var Language = &deps.Language{
	Name:            "dotnet",
	DefaultRegistry: "nuget",
	ManifestTypes:   []string{deps.ManifestFilename},
	NewManifest:     newManifest,
}

func newManifest(name string) deps.ManifestParser {
	switch name {
	case deps.ManifestFilename:
		return &PackagesConfig{}
	default:
		return nil
	}
}
