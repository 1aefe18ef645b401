package event

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlState int

const (
	yamlStreamStart yamlState = iota
	yamlBetweenDocuments
	yamlInDocument
	yamlStreamEnd
	yamlFailed
)

type yamlFrame struct {
	node *yaml.Node
	next int
}

// YAMLSource tokenizes YAML text into events. yaml.v3 does not expose its
// event parser, so each document is parsed into a node tree and replayed
// lazily; documents after the current one are not read until asked for.
// Memory use grows with the size of the current document.
type YAMLSource struct {
	dec   *yaml.Decoder
	state yamlState
	stack []yamlFrame
	err   error
}

// NewYAMLSource creates a source reading YAML from r.
func NewYAMLSource(r io.Reader) *YAMLSource {
	return &YAMLSource{dec: yaml.NewDecoder(r)}
}

// Next returns the next event, io.EOF after StreamEnd, or the tokenizer
// error that stopped the stream.
func (s *YAMLSource) Next() (Event, error) {
	for {
		switch s.state {
		case yamlStreamStart:
			s.state = yamlBetweenDocuments
			return Event{Kind: StreamStart}, nil

		case yamlBetweenDocuments:
			var doc yaml.Node
			if err := s.dec.Decode(&doc); err != nil {
				if errors.Is(err, io.EOF) {
					s.state = yamlStreamEnd
					return Event{Kind: StreamEnd}, nil
				}
				return Event{}, s.fail(err)
			}
			s.stack = append(s.stack[:0], yamlFrame{node: &doc})
			s.state = yamlInDocument
			return Event{Kind: DocumentStart, Line: doc.Line, Column: doc.Column}, nil

		case yamlInDocument:
			if len(s.stack) == 0 {
				s.state = yamlBetweenDocuments
				return Event{Kind: DocumentEnd}, nil
			}
			top := len(s.stack) - 1
			frame := s.stack[top]
			if frame.next >= len(frame.node.Content) {
				s.stack = s.stack[:top]
				switch frame.node.Kind {
				case yaml.MappingNode:
					return Event{Kind: MappingEnd}, nil
				case yaml.SequenceNode:
					return Event{Kind: SequenceEnd}, nil
				}
				continue
			}
			s.stack[top].next++
			return s.open(frame.node.Content[frame.next])

		case yamlStreamEnd:
			return Event{}, io.EOF

		default:
			return Event{}, s.err
		}
	}
}

func (s *YAMLSource) open(n *yaml.Node) (Event, error) {
	ev := Event{Line: n.Line, Column: n.Column}
	if n.Style&yaml.TaggedStyle != 0 {
		ev.Tag = n.Tag
	}
	switch n.Kind {
	case yaml.ScalarNode:
		ev.Kind = Scalar
		ev.Value = n.Value
		ev.Style = scalarStyle(n.Style)
	case yaml.MappingNode:
		ev.Kind = MappingStart
		s.stack = append(s.stack, yamlFrame{node: n})
	case yaml.SequenceNode:
		ev.Kind = SequenceStart
		s.stack = append(s.stack, yamlFrame{node: n})
	case yaml.AliasNode:
		return Event{}, s.fail(fmt.Errorf("yaml: line %d: aliases are not supported", n.Line))
	default:
		return Event{}, s.fail(fmt.Errorf("yaml: line %d: unexpected node kind %d", n.Line, n.Kind))
	}
	return ev, nil
}

func (s *YAMLSource) fail(err error) error {
	s.state = yamlFailed
	s.err = err
	s.stack = nil
	return err
}

func scalarStyle(st yaml.Style) Style {
	switch {
	case st&yaml.DoubleQuotedStyle != 0:
		return DoubleQuoted
	case st&yaml.SingleQuotedStyle != 0:
		return SingleQuoted
	case st&yaml.LiteralStyle != 0:
		return Literal
	case st&yaml.FoldedStyle != 0:
		return Folded
	default:
		return Plain
	}
}
