// Package index keeps decoded specifications grouped by gem name.
package index

import (
	"sort"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// Entry is one gem version known to the index.
type Entry struct {
	Name         string
	Version      gemspec.Version
	Platform     string
	Dependencies []gemspec.Dependency
	Path         string // file the entry was decoded from, if any
}

// FullName returns name-version with a -platform suffix for non-ruby
// platforms.
func (e Entry) FullName() string {
	s := gemspec.Specification{Name: e.Name, Version: e.Version, Platform: e.Platform}
	return s.FullName()
}

// RuntimeDependencies returns the dependencies of kind Runtime.
func (e Entry) RuntimeDependencies() []gemspec.Dependency {
	s := gemspec.Specification{Dependencies: e.Dependencies}
	return s.RuntimeDependencies()
}

// EntryFor builds an index entry from a decoded specification.
func EntryFor(spec *gemspec.Specification, path string) Entry {
	return Entry{
		Name:         spec.Name,
		Version:      spec.Version,
		Platform:     spec.Platform,
		Dependencies: spec.Dependencies,
		Path:         path,
	}
}

// Index provides lookup of gem versions by name.
type Index struct {
	gems map[string][]Entry
}

// New creates an empty index.
func New() *Index {
	return &Index{gems: make(map[string][]Entry)}
}

// Add records an entry. An entry with the same full name replaces the
// earlier one. Versions of a gem are kept newest first.
func (idx *Index) Add(e Entry) {
	versions := idx.gems[e.Name]
	for i, existing := range versions {
		if existing.FullName() == e.FullName() {
			versions[i] = e
			return
		}
	}
	versions = append(versions, e)
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Version.Compare(versions[j].Version) > 0
	})
	idx.gems[e.Name] = versions
}

// AddSpec records a decoded specification.
func (idx *Index) AddSpec(spec *gemspec.Specification, path string) {
	idx.Add(EntryFor(spec, path))
}

// Lookup returns every known version of name, newest first.
func (idx *Index) Lookup(name string) ([]Entry, bool) {
	versions, ok := idx.gems[name]
	if !ok {
		return nil, false
	}
	out := make([]Entry, len(versions))
	copy(out, versions)
	return out, true
}

// Best returns the newest version of name that satisfies req.
func (idx *Index) Best(name string, req gemspec.Requirement) (Entry, bool) {
	for _, e := range idx.gems[name] {
		if req.SatisfiedBy(e.Version) {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns all gem names in sorted order.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.gems))
	for name := range idx.gems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every entry, sorted by name and then newest first.
func (idx *Index) Entries() []Entry {
	var out []Entry
	for _, name := range idx.Names() {
		out = append(out, idx.gems[name]...)
	}
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	n := 0
	for _, versions := range idx.gems {
		n += len(versions)
	}
	return n
}
