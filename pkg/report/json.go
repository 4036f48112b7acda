package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/stackaudit/pkg/deps"
)

type jsonReport struct {
	RunID        string            `json:"run_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Owner        string            `json:"owner,omitempty"`
	Hostname     string            `json:"hostname,omitempty"`
	Dependencies []deps.Dependency `json:"dependencies"`
	Manifests    []jsonManifest    `json:"manifests"`
}

type jsonManifest struct {
	Path     string        `json:"path"`
	Packages []jsonPackage `json:"packages"`
}

type jsonPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	License string `json:"license"`
}

// WriteJSON writes the unique dependencies and the per-manifest grouping
// as an indented JSON document.
func WriteJSON(w io.Writer, s *Set, m Meta) error {
	out := jsonReport{
		RunID:        m.RunID,
		GeneratedAt:  m.GeneratedAt.UTC(),
		Owner:        m.Owner,
		Hostname:     m.Hostname,
		Dependencies: s.Unique(),
		Manifests:    []jsonManifest{},
	}

	for _, g := range s.Grouped() {
		jm := jsonManifest{Path: g.Manifest, Packages: make([]jsonPackage, len(g.Dependencies))}
		for i, d := range g.Dependencies {
			jm.Packages[i] = jsonPackage{Name: d.Name, Version: d.Version, License: d.License}
		}
		out.Manifests = append(out.Manifests, jm)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
