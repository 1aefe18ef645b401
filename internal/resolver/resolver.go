// Package resolver selects gem versions for a set of dependencies.
package resolver

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/gemspec/internal/gemspec"
	"github.com/frederic-klein/gemspec/internal/index"
)

// Reason explains why a dependency could not be resolved.
type Reason int

const (
	// NotFound means the index has no version of the gem.
	NotFound Reason = iota + 1
	// NoMatch means no indexed version satisfies the requirement.
	NoMatch
	// Conflict means the gem was already selected at a version that
	// does not satisfy a later requirement.
	Conflict
)

func (r Reason) String() string {
	switch r {
	case NotFound:
		return "not found"
	case NoMatch:
		return "no matching version"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Unresolved is a dependency that could not be satisfied.
type Unresolved struct {
	Name        string              `json:"name" yaml:"name" cbor:"name"`
	Requirement gemspec.Requirement `json:"requirement" yaml:"requirement" cbor:"requirement"`
	RequiredBy  string              `json:"required_by,omitempty" yaml:"required_by,omitempty" cbor:"required_by,omitempty"`
	Reason      Reason              `json:"reason" yaml:"reason" cbor:"reason"`
	Selected    string              `json:"selected,omitempty" yaml:"selected,omitempty" cbor:"selected,omitempty"`
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Selected   []index.Entry
	Unresolved []Unresolved
}

// OK reports whether every dependency was resolved.
func (r *Resolution) OK() bool {
	return len(r.Unresolved) == 0
}

// implicitGems ship with every Ruby installation and are never looked up.
var implicitGems = map[string]bool{
	"bundler":  true,
	"rubygems": true,
}

// Resolver resolves gem dependencies recursively against an index.
//
// Selection is greedy: each gem gets the newest version satisfying the
// first requirement seen for it, and later requirements are checked
// against that choice.
type Resolver struct {
	index    *index.Index
	resolved map[string]index.Entry
	order    []string
	missing  []Unresolved
	logger   *log.Logger
}

// NewResolver creates a new dependency resolver. A nil logger discards
// output.
func NewResolver(idx *index.Index, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		index:    idx,
		resolved: make(map[string]index.Entry),
		logger:   logger,
	}
}

// Resolve resolves deps and, transitively, the runtime dependencies of
// every selected gem. Selected entries are sorted by name.
func (r *Resolver) Resolve(deps []gemspec.Dependency) *Resolution {
	for _, dep := range deps {
		r.resolveOne(dep, "")
	}

	selected := make([]index.Entry, 0, len(r.order))
	for _, name := range r.order {
		selected = append(selected, r.resolved[name])
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Name < selected[j].Name
	})
	return &Resolution{Selected: selected, Unresolved: r.missing}
}

func (r *Resolver) resolveOne(dep gemspec.Dependency, requiredBy string) {
	if implicitGems[dep.Name] {
		return
	}

	if e, ok := r.resolved[dep.Name]; ok {
		if !dep.Requirement.SatisfiedBy(e.Version) {
			r.logger.Debug("conflict", "gem", dep.Name, "selected", e.Version, "requirement", dep.Requirement, "by", requiredBy)
			r.missing = append(r.missing, Unresolved{
				Name:        dep.Name,
				Requirement: dep.Requirement,
				RequiredBy:  requiredBy,
				Reason:      Conflict,
				Selected:    e.Version.String(),
			})
		}
		return
	}

	r.logger.Debug("resolving", "gem", dep.Name, "requirement", dep.Requirement)

	if _, found := r.index.Lookup(dep.Name); !found {
		r.missing = append(r.missing, Unresolved{
			Name: dep.Name, Requirement: dep.Requirement, RequiredBy: requiredBy, Reason: NotFound,
		})
		return
	}

	e, ok := r.index.Best(dep.Name, dep.Requirement)
	if !ok {
		r.missing = append(r.missing, Unresolved{
			Name: dep.Name, Requirement: dep.Requirement, RequiredBy: requiredBy, Reason: NoMatch,
		})
		return
	}
	r.logger.Debug("selected", "gem", e.FullName())

	// Mark as resolved before recursing so circular dependencies terminate.
	r.resolved[dep.Name] = e
	r.order = append(r.order, dep.Name)

	for _, sub := range e.RuntimeDependencies() {
		r.resolveOne(sub, e.FullName())
	}
}
