package report

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/stackaudit/pkg/deps"
)

// Group is the dependencies declared by one manifest, in declaration order.
type Group struct {
	Manifest     string
	Dependencies []deps.Dependency
}

// Set accumulates the dependencies of one run. It is safe for concurrent use.
type Set struct {
	mu      sync.Mutex
	records []deps.Dependency
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Add appends one manifest's batch. The batch is copied and appended under a
// single lock, so concurrent batches never interleave.
func (s *Set) Add(batch []deps.Dependency) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, batch...)
}

// Len returns the number of records, duplicates included.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// All returns every record ordered by manifest path, then declaration order.
func (s *Set) All() []deps.Dependency {
	s.mu.Lock()
	out := slices.Clone(s.records)
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b deps.Dependency) int {
		return strings.Compare(a.Manifest, b.Manifest)
	})
	return out
}

// Unique returns one record per (name, version) pair, keeping the first
// in [Set.All] order, sorted by name. Records with equal names keep their
// relative order.
func (s *Set) Unique() []deps.Dependency {
	all := s.All()
	seen := make(map[deps.Key]bool, len(all))
	out := make([]deps.Dependency, 0, len(all))
	for _, d := range all {
		k := d.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}

	slices.SortStableFunc(out, func(a, b deps.Dependency) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Grouped partitions the records by manifest. Groups are ordered by
// descending size, then manifest path.
func (s *Set) Grouped() []Group {
	var groups []Group
	for _, d := range s.All() {
		if n := len(groups); n > 0 && groups[n-1].Manifest == d.Manifest {
			groups[n-1].Dependencies = append(groups[n-1].Dependencies, d)
			continue
		}
		groups = append(groups, Group{Manifest: d.Manifest, Dependencies: []deps.Dependency{d}})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(len(b.Dependencies), len(a.Dependencies)); c != 0 {
			return c
		}
		return strings.Compare(a.Manifest, b.Manifest)
	})
	return groups
}

// Manifests returns the distinct manifest paths that contributed records, sorted.
func (s *Set) Manifests() []string {
	var out []string
	for _, d := range s.All() {
		if n := len(out); n == 0 || out[n-1] != d.Manifest {
			out = append(out, d.Manifest)
		}
	}
	return out
}

// Unknown counts records whose lookup failed.
func (s *Set) Unknown() int {
	return deps.Failed(s.All())
}
