// Package decoder turns a document event stream into a gemspec.Specification.
//
// Decoding is a single pull loop over an event.Cursor. Each serialized Ruby
// type (Gem::Specification, Gem::Dependency, Gem::Requirement, Gem::Version)
// has its own decode function; they call one another as the document
// nests. The first error aborts the decode and no partial specification is
// returned.
package decoder

import (
	"bytes"
	"fmt"
	"io"

	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// Decode reads exactly one Gem::Specification document from src.
func Decode(src event.Source) (*gemspec.Specification, error) {
	c := event.NewCursor(src)
	spec, err := decodeDocument(c)
	if err != nil {
		if line, col := c.Position(); line > 0 {
			return nil, &PositionError{Line: line, Column: col, Err: err}
		}
		return nil, err
	}
	return spec, nil
}

// DecodeReader decodes YAML text read from r.
func DecodeReader(r io.Reader) (*gemspec.Specification, error) {
	return Decode(event.NewYAMLSource(r))
}

// DecodeBytes decodes a YAML text buffer.
func DecodeBytes(b []byte) (*gemspec.Specification, error) {
	return DecodeReader(bytes.NewReader(b))
}

func decodeDocument(c *event.Cursor) (*gemspec.Specification, error) {
	if err := expectFrame(c, event.StreamStart); err != nil {
		return nil, err
	}
	if err := expectFrame(c, event.DocumentStart); err != nil {
		return nil, err
	}
	root, err := next(c)
	if err != nil {
		return nil, err
	}
	if root.Kind != event.MappingStart || !root.IsRubyObject(tagSpecification) {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("expected !ruby/object:%s mapping at root, got %s", tagSpecification, root)}
	}
	spec, err := decodeSpecification(c)
	if err != nil {
		return nil, err
	}
	if err := expectFrame(c, event.DocumentEnd); err != nil {
		return nil, err
	}
	if err := expectFrame(c, event.StreamEnd); err != nil {
		return nil, err
	}
	done, err := c.Exhausted()
	if err != nil {
		return nil, wrapSourceErr(err)
	}
	if !done {
		ev, _ := c.Peek()
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("trailing %s after end of stream", ev)}
	}
	return spec, nil
}

func expectFrame(c *event.Cursor, want event.Kind) error {
	ev, err := next(c)
	if err != nil {
		return err
	}
	if ev.Kind != want {
		return &MalformedDocumentError{Reason: fmt.Sprintf("expected %s, got %s", want, ev)}
	}
	return nil
}
