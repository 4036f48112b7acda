package deps

import "slices"

// Language binds an ecosystem's manifest formats to their parsers.
type Language struct {
	Name            string
	DefaultRegistry string
	ManifestTypes   []string          // Filenames the language recognizes
	ManifestAliases map[string]string // Alternate filenames mapped onto ManifestTypes
	NewManifest     func(name string) ManifestParser
}

// Manifest returns the parser for a manifest filename.
func (l *Language) Manifest(name string) (ManifestParser, bool) {
	if l.NewManifest == nil {
		return nil, false
	}
	name = l.alias(l.ManifestAliases, name)
	if !slices.Contains(l.ManifestTypes, name) {
		return nil, false
	}
	p := l.NewManifest(name)
	return p, p != nil
}

// HasManifests reports whether the language can parse any manifest.
func (l *Language) HasManifests() bool {
	return l.NewManifest != nil && len(l.ManifestTypes) > 0
}

func (l *Language) alias(m map[string]string, name string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return name
}
