// Package lockfile reads and writes the GEM section of a Gemfile.lock.
package lockfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/frederic-klein/gemspec/internal/gemspec"
	"github.com/frederic-klein/gemspec/internal/index"
)

// Lockfile is the parsed content of a lock file.
type Lockfile struct {
	Entries      []index.Entry
	Platforms    []string
	Dependencies []gemspec.Dependency
}

// Index returns the locked entries as an index.
func (l *Lockfile) Index() *index.Index {
	idx := index.New()
	for _, e := range l.Entries {
		idx.Add(e)
	}
	return idx
}

// Emitter writes lock files.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new lock file emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the selected entries and the top-level dependencies that
// produced them. Gems and dependencies are sorted by name; only runtime
// dependencies of each gem are listed.
func (e *Emitter) Emit(entries []index.Entry, deps []gemspec.Dependency) error {
	sorted := make([]index.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FullName() < sorted[j].FullName()
	})

	if _, err := fmt.Fprint(e.w, "GEM\n  specs:\n"); err != nil {
		return err
	}
	for _, entry := range sorted {
		if err := e.emitEntry(entry); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(e.w, "\nPLATFORMS\n"); err != nil {
		return err
	}
	for _, p := range platforms(sorted) {
		if _, err := fmt.Fprintf(e.w, "  %s\n", p); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(e.w, "\nDEPENDENCIES\n"); err != nil {
		return err
	}
	for _, d := range sortedDeps(deps) {
		if _, err := fmt.Fprintf(e.w, "  %s\n", formatDep(d)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitEntry(entry index.Entry) error {
	version := entry.Version.String()
	if entry.Platform != "" && entry.Platform != gemspec.DefaultPlatform {
		version += "-" + entry.Platform
	}
	if _, err := fmt.Fprintf(e.w, "    %s (%s)\n", entry.Name, version); err != nil {
		return err
	}
	for _, d := range sortedDeps(entry.RuntimeDependencies()) {
		if _, err := fmt.Fprintf(e.w, "      %s\n", formatDep(d)); err != nil {
			return err
		}
	}
	return nil
}

func formatDep(d gemspec.Dependency) string {
	if d.Requirement.Unconstrained() {
		return d.Name
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Requirement)
}

func sortedDeps(deps []gemspec.Dependency) []gemspec.Dependency {
	sorted := make([]gemspec.Dependency, len(deps))
	copy(sorted, deps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func platforms(entries []index.Entry) []string {
	seen := map[string]bool{gemspec.DefaultPlatform: true}
	for _, e := range entries {
		if e.Platform != "" {
			seen[e.Platform] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
