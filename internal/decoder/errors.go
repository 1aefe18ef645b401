package decoder

import (
	"fmt"

	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// Container names used in error values.
const (
	ContainerSpecification = "Specification"
	ContainerVersion       = "Version"
	ContainerRequirement   = "Requirement"
	ContainerDependency    = "Dependency"
	ContainerMetadata      = "Metadata"
)

// ErrUnexpectedEndOfStream is returned when the event stream ends while a
// container is still open.
var ErrUnexpectedEndOfStream = event.ErrUnexpectedEndOfStream

// MalformedVersionError is returned for version text with an empty segment.
type MalformedVersionError = gemspec.MalformedVersionError

// MalformedDocumentError reports a framing violation around the root object.
type MalformedDocumentError struct {
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return "malformed document: " + e.Reason
}

// UnknownFieldError reports a key outside the container's schema.
type UnknownFieldError struct {
	Container string
	Field     string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in %s", e.Field, e.Container)
}

// MissingFieldError reports a mandatory key absent at the end of a mapping.
type MissingFieldError struct {
	Container string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q in %s", e.Field, e.Container)
}

// DuplicateFieldError reports a key seen twice in one mapping.
type DuplicateFieldError struct {
	Container string
	Field     string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field %q in %s", e.Field, e.Container)
}

// ScalarCoercionError reports a scalar of the wrong type, or a non-scalar
// event where a scalar was required.
type ScalarCoercionError struct {
	Expected string
	Got      string
}

func (e *ScalarCoercionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// UnknownDependencyTypeError reports a dependency type other than
// ":runtime" or ":development".
type UnknownDependencyTypeError struct {
	Value string
}

func (e *UnknownDependencyTypeError) Error() string {
	return fmt.Sprintf("unknown dependency type %q", e.Value)
}

// UnexpectedEventError reports a structural event that does not fit the
// field being decoded, such as a scalar where a tagged mapping belongs.
type UnexpectedEventError struct {
	Container string
	Field     string
	Expected  string
	Got       event.Event
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("%s.%s: expected %s, got %s", e.Container, e.Field, e.Expected, e.Got)
}

// UnderlyingParseError wraps a tokenizer failure verbatim.
type UnderlyingParseError struct {
	Err error
}

func (e *UnderlyingParseError) Error() string {
	return "parse error: " + e.Err.Error()
}

func (e *UnderlyingParseError) Unwrap() error {
	return e.Err
}

// PositionError attaches the input position of the last consumed event to
// a decode error.
type PositionError struct {
	Line   int
	Column int
	Err    error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}
