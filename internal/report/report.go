// Package report renders decoded specifications.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{Text, JSON, YAML, CBOR}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of text, json, yaml, cbor)", s)
}

var encMode cbor.EncMode

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	// Version and Requirement carry their data in unexported fields.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Writer renders values in one format.
type Writer struct {
	w      io.Writer
	format Format
}

// NewWriter creates a writer for format.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Specs writes specifications sorted by full name.
func (wr *Writer) Specs(specs []*gemspec.Specification) error {
	sorted := make([]*gemspec.Specification, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FullName() < sorted[j].FullName()
	})

	if wr.format == Text {
		for _, s := range sorted {
			if err := writeSpecText(wr.w, s); err != nil {
				return err
			}
		}
		return nil
	}
	return wr.Value(sorted)
}

// Value encodes v in a structured format. Text output falls back to
// YAML.
func (wr *Writer) Value(v any) error {
	switch wr.format {
	case JSON:
		enc := json.NewEncoder(wr.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case CBOR:
		return encMode.NewEncoder(wr.w).Encode(v)
	default:
		enc := yaml.NewEncoder(wr.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func writeSpecText(w io.Writer, s *gemspec.Specification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.FullName())
	fmt.Fprintf(&b, "  summary: %s\n", s.Summary)
	if s.Homepage != "" {
		fmt.Fprintf(&b, "  homepage: %s\n", s.Homepage)
	}
	if len(s.Authors) > 0 {
		fmt.Fprintf(&b, "  authors: %s\n", strings.Join(s.Authors, ", "))
	}
	if len(s.Licenses) > 0 {
		fmt.Fprintf(&b, "  licenses: %s\n", strings.Join(s.Licenses, ", "))
	}
	if s.RequiredRubyVersion != nil && !s.RequiredRubyVersion.Unconstrained() {
		fmt.Fprintf(&b, "  ruby: %s\n", s.RequiredRubyVersion)
	}
	for _, kind := range []gemspec.DependencyKind{gemspec.Runtime, gemspec.Development} {
		var deps []string
		for _, d := range s.Dependencies {
			if d.Kind == kind {
				deps = append(deps, d.String())
			}
		}
		if len(deps) == 0 {
			continue
		}
		sort.Strings(deps)
		fmt.Fprintf(&b, "  %s dependencies:\n", kind)
		for _, d := range deps {
			fmt.Fprintf(&b, "    %s\n", d)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
