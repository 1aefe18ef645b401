package decoder

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

func decodeEvents(evs []event.Event) (*gemspec.Specification, error) {
	return Decode(event.NewSliceSource(evs...))
}

func TestDecode_Minimal(t *testing.T) {
	spec, err := decodeEvents(document(minimalEntries()))
	require.NoError(t, err)

	assert.Equal(t, "rake", spec.Name)
	assert.Equal(t, "13.0.6", spec.Version.String())
	assert.Equal(t, []gemspec.Segment{gemspec.Number(13), gemspec.Number(0), gemspec.Number(6)}, spec.Version.Segments())
	assert.Equal(t, "ruby", spec.Platform)
	assert.Empty(t, spec.Dependencies)
	assert.NotNil(t, spec.Dependencies)
	assert.Equal(t, "3.4.10", spec.RubygemsVersion)
	assert.Equal(t, int64(4), spec.SpecificationVersion)
	assert.Equal(t, []string{"lib"}, spec.RequirePaths)
	assert.Equal(t, []string{"MIT"}, spec.Licenses)
	assert.Equal(t, []string{}, spec.Files)
	assert.Equal(t, []string{"a"}, spec.Authors)
	assert.Nil(t, spec.RequiredRubyVersion)
	assert.Nil(t, spec.Date)
	assert.Equal(t, "rake-13.0.6", spec.FullName())
}

func TestDecode_KeyOrderIrrelevant(t *testing.T) {
	entries := minimalEntries()
	slices.Reverse(entries)

	spec, err := decodeEvents(document(entries))
	require.NoError(t, err)
	assert.Equal(t, "rake", spec.Name)
	assert.Equal(t, "13.0.6", spec.Version.String())
}

func TestDecode_OptionalFields(t *testing.T) {
	entries := minimalEntries()
	entries = with(entries, "dependencies", dependenciesEvents(
		dependencyEvents("json", ":runtime", "~>", "2.6"),
		dependencyEvents("rspec", ":development", ">=", "3.0", "<", "4"),
	))
	entries = append(entries,
		entry{"autorequire", scalarEvents("")},
		entry{"bindir", scalarEvents("exe")},
		entry{"cert_chain", seqEvents()},
		entry{"date", scalarEvents("2023-03-15 00:00:00.000000000 Z")},
		entry{"description", []event.Event{{Kind: event.Scalar, Value: "Long text\n", Style: event.Literal}}},
		entry{"email", scalarEvents("dev@example.com")},
		entry{"executables", seqEvents("rake")},
		entry{"extensions", seqEvents()},
		entry{"extra_rdoc_files", seqEvents("README.md")},
		entry{"metadata", mappingEvents("", []entry{
			{"source_code_uri", scalarEvents("https://example.com/src")},
			{"rubygems_mfa_required", quotedEvents("true")},
		})},
		entry{"post_install_message", scalarEvents("")},
		entry{"rdoc_options", seqEvents("--main", "README.md")},
		entry{"required_ruby_version", requirementEvents(">=", "2.3")},
		entry{"required_rubygems_version", requirementEvents()},
		entry{"requirements", seqEvents()},
		entry{"signing_key", quotedEvents("key.pem")},
		entry{"test_files", seqEvents()},
		entry{"rubyforge_project", scalarEvents("")},
		entry{"has_rdoc", scalarEvents("true")},
	)

	spec, err := decodeEvents(document(entries))
	require.NoError(t, err)

	require.Len(t, spec.Dependencies, 2)
	assert.Equal(t, "json", spec.Dependencies[0].Name)
	assert.Equal(t, gemspec.Runtime, spec.Dependencies[0].Kind)
	assert.Equal(t, "rspec", spec.Dependencies[1].Name)
	assert.Equal(t, gemspec.Development, spec.Dependencies[1].Kind)
	assert.Equal(t, ">= 3.0, < 4", spec.Dependencies[1].Requirement.String())
	assert.Len(t, spec.RuntimeDependencies(), 1)

	assert.Nil(t, spec.Autorequire)
	require.NotNil(t, spec.Bindir)
	assert.Equal(t, "exe", *spec.Bindir)
	assert.Equal(t, []string{}, spec.CertChain)
	require.NotNil(t, spec.Date)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), *spec.Date)
	require.NotNil(t, spec.Description)
	assert.Equal(t, "Long text\n", *spec.Description)
	assert.Equal(t, []string{"dev@example.com"}, spec.Email)
	assert.Equal(t, map[string]string{
		"source_code_uri":       "https://example.com/src",
		"rubygems_mfa_required": "true",
	}, spec.Metadata)
	assert.Nil(t, spec.PostInstallMessage)
	assert.Equal(t, []string{"--main", "README.md"}, spec.RdocOptions)
	require.NotNil(t, spec.RequiredRubyVersion)
	assert.Equal(t, ">= 2.3", spec.RequiredRubyVersion.String())
	require.NotNil(t, spec.RequiredRubygemsVersion)
	assert.True(t, spec.RequiredRubygemsVersion.Unconstrained())
	require.NotNil(t, spec.SigningKey)
	assert.Equal(t, "key.pem", *spec.SigningKey)
	assert.Nil(t, spec.RubyforgeProject)
	require.NotNil(t, spec.HasRdoc)
	assert.True(t, *spec.HasRdoc)
}

func TestDecode_EmailForms(t *testing.T) {
	tests := []struct {
		name  string
		value []event.Event
		want  []string
	}{
		{"single", scalarEvents("a@example.com"), []string{"a@example.com"}},
		{"list", seqEvents("a@example.com", "b@example.com"), []string{"a@example.com", "b@example.com"}},
		{"null", scalarEvents(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := decodeEvents(document(with(minimalEntries(), "email", tt.value)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Email)
		})
	}
}

func TestDecode_SpecificationErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []entry
		check   func(t *testing.T, err error)
	}{
		{
			name:    "missing version",
			entries: without(minimalEntries(), "version"),
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, MissingFieldError{Container: "Specification", Field: "version"}, *missing)
			},
		},
		{
			name:    "missing authors",
			entries: without(minimalEntries(), "authors"),
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "authors", missing.Field)
			},
		},
		{
			name:    "null homepage",
			entries: with(minimalEntries(), "homepage", scalarEvents("")),
			check: func(t *testing.T, err error) {
				var coercion *ScalarCoercionError
				require.ErrorAs(t, err, &coercion)
				assert.Equal(t, "string", coercion.Expected)
			},
		},
		{
			name:    "unknown field",
			entries: append(minimalEntries(), entry{"unknown_future_field", scalarEvents("x")}),
			check: func(t *testing.T, err error) {
				var unknown *UnknownFieldError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, UnknownFieldError{Container: "Specification", Field: "unknown_future_field"}, *unknown)
			},
		},
		{
			name:    "duplicate field",
			entries: append(minimalEntries(), entry{"name", scalarEvents("again")}),
			check: func(t *testing.T, err error) {
				var dup *DuplicateFieldError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "name", dup.Field)
			},
		},
		{
			name:    "specification_version as string",
			entries: with(minimalEntries(), "specification_version", quotedEvents("4")),
			check: func(t *testing.T, err error) {
				var coercion *ScalarCoercionError
				require.ErrorAs(t, err, &coercion)
				assert.Equal(t, "integer", coercion.Expected)
			},
		},
		{
			name:    "version not tagged",
			entries: with(minimalEntries(), "version", quotedEvents("1.0")),
			check: func(t *testing.T, err error) {
				var unexpected *UnexpectedEventError
				require.ErrorAs(t, err, &unexpected)
				assert.Equal(t, "version", unexpected.Field)
			},
		},
		{
			name:    "dependency with unknown type",
			entries: with(minimalEntries(), "dependencies", dependenciesEvents(dependencyEvents("json", ":test"))),
			check: func(t *testing.T, err error) {
				var unknown *UnknownDependencyTypeError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, ":test", unknown.Value)
			},
		},
		{
			name:    "bad date",
			entries: append(minimalEntries(), entry{"date", scalarEvents("yesterday")}),
			check: func(t *testing.T, err error) {
				var coercion *ScalarCoercionError
				require.ErrorAs(t, err, &coercion)
				assert.Equal(t, "timestamp", coercion.Expected)
			},
		},
		{
			name:    "authors not a sequence",
			entries: with(minimalEntries(), "authors", scalarEvents("a")),
			check: func(t *testing.T, err error) {
				var unexpected *UnexpectedEventError
				require.ErrorAs(t, err, &unexpected)
				assert.Equal(t, "authors", unexpected.Field)
			},
		},
		{
			name:    "metadata value not a string",
			entries: append(minimalEntries(), entry{"metadata", mappingEvents("", []entry{{"count", scalarEvents("3")}})}),
			check: func(t *testing.T, err error) {
				var coercion *ScalarCoercionError
				require.ErrorAs(t, err, &coercion)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := decodeEvents(document(tt.entries))
			require.Error(t, err)
			assert.Nil(t, spec)
			tt.check(t, err)
		})
	}
}

func TestDecode_Framing(t *testing.T) {
	valid := document(minimalEntries())
	n := len(valid)

	tests := []struct {
		name   string
		events []event.Event
	}{
		{"missing stream start", valid[1:]},
		{"missing document start", append([]event.Event{valid[0]}, valid[2:]...)},
		{"wrong root tag", append(append([]event.Event{valid[0], valid[1], event.MapStart(event.Ruby("Gem::Version"))}, valid[3:n-2]...), valid[n-2:]...)},
		{"untagged root", append(append([]event.Event{valid[0], valid[1], event.MapStart("")}, valid[3:n-2]...), valid[n-2:]...)},
		{"second document", append(slices.Clone(valid[:n-1]), event.Event{Kind: event.DocumentStart}, event.Event{Kind: event.StreamEnd})},
		{"trailing events", append(slices.Clone(valid), event.Event{Kind: event.StreamStart})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEvents(tt.events)
			var malformed *MalformedDocumentError
			require.ErrorAs(t, err, &malformed)
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	valid := document(minimalEntries())
	for _, cut := range []int{0, 1, 2, 10, len(valid) - 2, len(valid) - 1} {
		_, err := decodeEvents(valid[:cut])
		require.ErrorIs(t, err, ErrUnexpectedEndOfStream, "cut at %d", cut)
	}
}

const rakeYAML = `--- !ruby/object:Gem::Specification
name: rake
version: !ruby/object:Gem::Version
  version: 13.0.6
platform: ruby
authors:
- Hiroshi SHIBATA
- Eric Hodel
autorequire:
bindir: exe
cert_chain: []
date: 2021-07-09 00:00:00.000000000 Z
dependencies:
- !ruby/object:Gem::Dependency
  name: json
  requirement: !ruby/object:Gem::Requirement
    requirements:
    - - "~>"
      - !ruby/object:Gem::Version
        version: '2.6'
  type: :runtime
  prerelease: false
  version_requirements: !ruby/object:Gem::Requirement
    requirements:
    - - "~>"
      - !ruby/object:Gem::Version
        version: '2.6'
description: |
  Rake is a Make-like program implemented in Ruby.
email:
- hsbt@ruby-lang.org
executables:
- rake
extensions: []
extra_rdoc_files:
- README.rdoc
files:
- exe/rake
- lib/rake.rb
homepage: https://github.com/ruby/rake
licenses:
- MIT
metadata:
  bug_tracker_uri: https://github.com/ruby/rake/issues
  source_code_uri: https://github.com/ruby/rake/tree/v13.0.6
post_install_message:
rdoc_options:
- "--main"
- README.rdoc
require_paths:
- lib
required_ruby_version: !ruby/object:Gem::Requirement
  requirements:
  - - ">="
    - !ruby/object:Gem::Version
      version: '2.2'
required_rubygems_version: !ruby/object:Gem::Requirement
  requirements:
  - - ">="
    - !ruby/object:Gem::Version
      version: 1.3.2
requirements: []
rubygems_version: 3.3.0.dev
signing_key:
specification_version: 4
summary: Rake is a Make-like program implemented in Ruby
test_files: []
`

func TestDecodeReader_YAML(t *testing.T) {
	spec, err := DecodeReader(strings.NewReader(rakeYAML))
	require.NoError(t, err)

	assert.Equal(t, "rake", spec.Name)
	assert.Equal(t, "13.0.6", spec.Version.String())
	assert.Equal(t, []string{"Hiroshi SHIBATA", "Eric Hodel"}, spec.Authors)
	assert.Nil(t, spec.Autorequire)
	require.Len(t, spec.Dependencies, 1)

	dep := spec.Dependencies[0]
	assert.Equal(t, "json", dep.Name)
	assert.Equal(t, gemspec.Runtime, dep.Kind)
	assert.Equal(t, []gemspec.Constraint{
		gemspec.NewConstraint(gemspec.Tilde, gemspec.MustParseVersion("2.6")),
	}, dep.Requirement.Constraints())

	require.NotNil(t, spec.Description)
	assert.Equal(t, "Rake is a Make-like program implemented in Ruby.\n", *spec.Description)
	assert.Equal(t, "https://github.com/ruby/rake/issues", spec.Metadata["bug_tracker_uri"])
	assert.Equal(t, "1.3.2", spec.RequiredRubygemsVersion.Constraints()[0].Version.String())
	assert.Equal(t, "3.3.0.dev", spec.RubygemsVersion)
	assert.Equal(t, int64(4), spec.SpecificationVersion)
	assert.Equal(t, []string{"--main", "README.rdoc"}, spec.RdocOptions)
	require.NotNil(t, spec.Date)
	assert.Equal(t, 2021, spec.Date.Year())
}

func TestDecodeReader_YAMLErrors(t *testing.T) {
	t.Run("tokenizer failure", func(t *testing.T) {
		_, err := DecodeBytes([]byte("--- !ruby/object:Gem::Specification\nname: [unclosed\n"))
		var parseErr *UnderlyingParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("second document", func(t *testing.T) {
		_, err := DecodeBytes([]byte(rakeYAML + "--- {}\n"))
		var malformed *MalformedDocumentError
		require.ErrorAs(t, err, &malformed)

		var pos *PositionError
		require.ErrorAs(t, err, &pos)
		assert.Positive(t, pos.Line)
	})

	t.Run("malformed second document", func(t *testing.T) {
		_, err := DecodeBytes([]byte(rakeYAML + "--- [\n"))
		var parseErr *UnderlyingParseError
		require.ErrorAs(t, err, &parseErr)

		var malformed *MalformedDocumentError
		assert.False(t, errors.As(err, &malformed))
	})

	t.Run("plain mapping root", func(t *testing.T) {
		_, err := DecodeBytes([]byte("name: rake\n"))
		var malformed *MalformedDocumentError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := DecodeBytes(nil)
		var malformed *MalformedDocumentError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("unknown field carries position", func(t *testing.T) {
		text := strings.Replace(rakeYAML, "test_files: []\n", "test_files: []\nsurprise: 1\n", 1)
		_, err := DecodeBytes([]byte(text))
		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "surprise", unknown.Field)
		assert.Contains(t, err.Error(), "line ")
	})
}
