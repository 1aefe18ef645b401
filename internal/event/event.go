package event

import (
	"fmt"
	"strings"
)

// Kind identifies the structural role of an event.
type Kind int

const (
	StreamStart Kind = iota
	DocumentStart
	DocumentEnd
	StreamEnd
	MappingStart
	MappingEnd
	SequenceStart
	SequenceEnd
	Scalar
)

var kindNames = [...]string{
	StreamStart:   "StreamStart",
	DocumentStart: "DocumentStart",
	DocumentEnd:   "DocumentEnd",
	StreamEnd:     "StreamEnd",
	MappingStart:  "MappingStart",
	MappingEnd:    "MappingEnd",
	SequenceStart: "SequenceStart",
	SequenceEnd:   "SequenceEnd",
	Scalar:        "Scalar",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Style is the presentation style of a scalar.
type Style int

const (
	Plain Style = iota
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
)

func (s Style) String() string {
	switch s {
	case Plain:
		return "plain"
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	case Literal:
		return "literal"
	case Folded:
		return "folded"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Event is one token of a document event stream.
//
// Tag is only set when the source carried an explicit tag. Value and Style
// are only meaningful for Scalar events. Line and Column are 1-based and
// zero when the source does not track positions.
type Event struct {
	Kind   Kind
	Tag    string
	Value  string
	Style  Style
	Line   int
	Column int
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Tag != "" {
		fmt.Fprintf(&b, "(%s)", e.Tag)
	}
	if e.Kind == Scalar {
		fmt.Fprintf(&b, " %q", e.Value)
		if e.Style != Plain {
			fmt.Fprintf(&b, " [%s]", e.Style)
		}
	}
	return b.String()
}

// RubyObjectPrefix is the tag prefix used for serialized Ruby objects.
const RubyObjectPrefix = "!ruby/object:"

// RubyObject reports the Ruby type name carried by the event tag, if any.
func (e Event) RubyObject() (string, bool) {
	if name, ok := strings.CutPrefix(e.Tag, RubyObjectPrefix); ok {
		return name, true
	}
	return "", false
}

// IsRubyObject reports whether the event is tagged with exactly the given
// Ruby type name.
func (e Event) IsRubyObject(name string) bool {
	got, ok := e.RubyObject()
	return ok && got == name
}

// Constructors for building event sequences by hand.

func Scal(value string) Event {
	return Event{Kind: Scalar, Value: value}
}

func Quoted(value string) Event {
	return Event{Kind: Scalar, Value: value, Style: SingleQuoted}
}

func MapStart(tag string) Event {
	return Event{Kind: MappingStart, Tag: tag}
}

func MapEnd() Event {
	return Event{Kind: MappingEnd}
}

func SeqStart() Event {
	return Event{Kind: SequenceStart}
}

func SeqEnd() Event {
	return Event{Kind: SequenceEnd}
}

// Ruby returns the tag for a serialized Ruby object of the given type.
func Ruby(name string) string {
	return RubyObjectPrefix + name
}
