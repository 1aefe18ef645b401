package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

func testSpecs() []*gemspec.Specification {
	ruby, _ := gemspec.ParseRequirement(">= 2.3")
	tilde, _ := gemspec.ParseRequirement("~> 2.6")
	dev, _ := gemspec.ParseRequirement("~> 5.0")
	date := time.Date(2021, 7, 9, 0, 0, 0, 0, time.UTC)
	return []*gemspec.Specification{
		{
			Name:     "rake",
			Version:  gemspec.MustParseVersion("13.0.6"),
			Platform: "ruby",
			Authors:  []string{"Hiroshi SHIBATA", "Eric Hodel"},
			Date:     &date,
			Dependencies: []gemspec.Dependency{
				{Name: "minitest", Requirement: dev, Kind: gemspec.Development},
				{Name: "json", Requirement: tilde, Kind: gemspec.Runtime},
			},
			Homepage:            "https://github.com/ruby/rake",
			Licenses:            []string{"MIT"},
			RequiredRubyVersion: &ruby,
			Summary:             "Make-like build tool",
		},
		{
			Name:         "nokogiri",
			Version:      gemspec.MustParseVersion("1.16.0"),
			Platform:     "x86_64-linux",
			Dependencies: []gemspec.Dependency{},
			Summary:      "HTML and XML parser",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", Text, false},
		{"JSON", JSON, false},
		{"yaml", YAML, false},
		{"cbor", CBOR, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriter_Specs_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, Text).Specs(testSpecs()))

	want := `nokogiri-1.16.0-x86_64-linux
  summary: HTML and XML parser
rake-13.0.6
  summary: Make-like build tool
  homepage: https://github.com/ruby/rake
  authors: Hiroshi SHIBATA, Eric Hodel
  licenses: MIT
  ruby: >= 2.3
  runtime dependencies:
    json (~> 2.6)
  development dependencies:
    minitest (~> 5.0)
`
	assert.Equal(t, want, buf.String())
}

type decoded struct {
	Name         string `json:"name" yaml:"name" cbor:"name"`
	Version      string `json:"version" yaml:"version" cbor:"version"`
	Platform     string `json:"platform" yaml:"platform" cbor:"platform"`
	Dependencies []struct {
		Name        string `json:"name" yaml:"name" cbor:"name"`
		Requirement string `json:"requirement" yaml:"requirement" cbor:"requirement"`
		Type        string `json:"type" yaml:"type" cbor:"type"`
	} `json:"dependencies" yaml:"dependencies" cbor:"dependencies"`
	RequiredRubyVersion string `json:"required_ruby_version" yaml:"required_ruby_version" cbor:"required_ruby_version"`
}

func TestWriter_Specs_Structured(t *testing.T) {
	tests := []struct {
		format    Format
		unmarshal func([]byte, any) error
	}{
		{JSON, json.Unmarshal},
		{YAML, yaml.Unmarshal},
		{CBOR, cbor.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			// Act
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf, tt.format).Specs(testSpecs()))

			// Assert
			var got []decoded
			require.NoError(t, tt.unmarshal(buf.Bytes(), &got))
			require.Len(t, got, 2)
			assert.Equal(t, "nokogiri", got[0].Name)
			assert.Equal(t, "x86_64-linux", got[0].Platform)

			rake := got[1]
			assert.Equal(t, "13.0.6", rake.Version)
			assert.Equal(t, ">= 2.3", rake.RequiredRubyVersion)
			require.Len(t, rake.Dependencies, 2)
			assert.Equal(t, "minitest", rake.Dependencies[0].Name)
			assert.Equal(t, "~> 5.0", rake.Dependencies[0].Requirement)
			assert.Equal(t, "development", rake.Dependencies[0].Type)
		})
	}
}

func TestWriter_Value_Deterministic(t *testing.T) {
	v := map[string]int{"b": 2, "a": 1, "c": 3}

	var first, second bytes.Buffer
	require.NoError(t, NewWriter(&first, CBOR).Value(v))
	require.NoError(t, NewWriter(&second, CBOR).Value(v))
	assert.Equal(t, first.Bytes(), second.Bytes())

	var text bytes.Buffer
	require.NoError(t, NewWriter(&text, Text).Value(v))
	assert.Equal(t, "a: 1\nb: 2\nc: 3\n", text.String())
}
