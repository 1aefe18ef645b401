// Package gemspec holds the decoded form of a gem specification.
//
// Values are built once by the decoder and handed to the caller; nothing in
// this package mutates them afterwards.
package gemspec

import (
	"fmt"
	"time"
)

// DependencyKind is the scope of a dependency.
type DependencyKind int

const (
	Runtime DependencyKind = iota
	Development
)

func (k DependencyKind) String() string {
	switch k {
	case Runtime:
		return "runtime"
	case Development:
		return "development"
	default:
		return fmt.Sprintf("DependencyKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k DependencyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Dependency is a named requirement on another gem.
type Dependency struct {
	Name        string         `json:"name" yaml:"name" cbor:"name"`
	Requirement Requirement    `json:"requirement" yaml:"requirement" cbor:"requirement"`
	Kind        DependencyKind `json:"type" yaml:"type" cbor:"type"`
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Requirement)
}

// Specification is a decoded Gem::Specification.
//
// Optional scalar fields are pointers; nil means the field was absent or null.
type Specification struct {
	Name                    string            `json:"name" yaml:"name" cbor:"name"`
	Version                 Version           `json:"version" yaml:"version" cbor:"version"`
	Platform                string            `json:"platform" yaml:"platform" cbor:"platform"`
	Authors                 []string          `json:"authors" yaml:"authors" cbor:"authors"`
	Autorequire             *string           `json:"autorequire,omitempty" yaml:"autorequire,omitempty" cbor:"autorequire,omitempty"`
	Bindir                  *string           `json:"bindir,omitempty" yaml:"bindir,omitempty" cbor:"bindir,omitempty"`
	CertChain               []string          `json:"cert_chain,omitempty" yaml:"cert_chain,omitempty" cbor:"cert_chain,omitempty"`
	Date                    *time.Time        `json:"date,omitempty" yaml:"date,omitempty" cbor:"date,omitempty"`
	Dependencies            []Dependency      `json:"dependencies" yaml:"dependencies" cbor:"dependencies"`
	Description             *string           `json:"description,omitempty" yaml:"description,omitempty" cbor:"description,omitempty"`
	Email                   []string          `json:"email,omitempty" yaml:"email,omitempty" cbor:"email,omitempty"`
	Executables             []string          `json:"executables,omitempty" yaml:"executables,omitempty" cbor:"executables,omitempty"`
	Extensions              []string          `json:"extensions,omitempty" yaml:"extensions,omitempty" cbor:"extensions,omitempty"`
	ExtraRdocFiles          []string          `json:"extra_rdoc_files,omitempty" yaml:"extra_rdoc_files,omitempty" cbor:"extra_rdoc_files,omitempty"`
	Files                   []string          `json:"files" yaml:"files" cbor:"files"`
	Homepage                string            `json:"homepage" yaml:"homepage" cbor:"homepage"`
	Licenses                []string          `json:"licenses" yaml:"licenses" cbor:"licenses"`
	Metadata                map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" cbor:"metadata,omitempty"`
	PostInstallMessage      *string           `json:"post_install_message,omitempty" yaml:"post_install_message,omitempty" cbor:"post_install_message,omitempty"`
	RdocOptions             []string          `json:"rdoc_options,omitempty" yaml:"rdoc_options,omitempty" cbor:"rdoc_options,omitempty"`
	RequirePaths            []string          `json:"require_paths" yaml:"require_paths" cbor:"require_paths"`
	RequiredRubyVersion     *Requirement      `json:"required_ruby_version,omitempty" yaml:"required_ruby_version,omitempty" cbor:"required_ruby_version,omitempty"`
	RequiredRubygemsVersion *Requirement      `json:"required_rubygems_version,omitempty" yaml:"required_rubygems_version,omitempty" cbor:"required_rubygems_version,omitempty"`
	Requirements            []string          `json:"requirements,omitempty" yaml:"requirements,omitempty" cbor:"requirements,omitempty"`
	RubygemsVersion         string            `json:"rubygems_version" yaml:"rubygems_version" cbor:"rubygems_version"`
	SigningKey              *string           `json:"signing_key,omitempty" yaml:"signing_key,omitempty" cbor:"signing_key,omitempty"`
	SpecificationVersion    int64             `json:"specification_version" yaml:"specification_version" cbor:"specification_version"`
	Summary                 string            `json:"summary" yaml:"summary" cbor:"summary"`
	TestFiles               []string          `json:"test_files,omitempty" yaml:"test_files,omitempty" cbor:"test_files,omitempty"`

	// Fields only written by old RubyGems releases.
	RubyforgeProject  *string `json:"rubyforge_project,omitempty" yaml:"rubyforge_project,omitempty" cbor:"rubyforge_project,omitempty"`
	DefaultExecutable *string `json:"default_executable,omitempty" yaml:"default_executable,omitempty" cbor:"default_executable,omitempty"`
	HasRdoc           *bool   `json:"has_rdoc,omitempty" yaml:"has_rdoc,omitempty" cbor:"has_rdoc,omitempty"`
	OriginalPlatform  *string `json:"original_platform,omitempty" yaml:"original_platform,omitempty" cbor:"original_platform,omitempty"`
}

// DefaultPlatform is the platform of pure-Ruby gems.
const DefaultPlatform = "ruby"

// FullName returns name-version, with a -platform suffix for
// platform-specific gems.
func (s *Specification) FullName() string {
	if s.Platform == "" || s.Platform == DefaultPlatform {
		return fmt.Sprintf("%s-%s", s.Name, s.Version)
	}
	return fmt.Sprintf("%s-%s-%s", s.Name, s.Version, s.Platform)
}

// RuntimeDependencies returns the dependencies of kind Runtime.
func (s *Specification) RuntimeDependencies() []Dependency {
	var out []Dependency
	for _, d := range s.Dependencies {
		if d.Kind == Runtime {
			out = append(out, d)
		}
	}
	return out
}
