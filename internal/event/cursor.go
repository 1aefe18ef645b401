package event

import (
	"errors"
	"io"
)

// ErrUnexpectedEndOfStream is returned when input is demanded after the
// source has been exhausted.
var ErrUnexpectedEndOfStream = errors.New("unexpected end of event stream")

// Source produces events one at a time. Next returns io.EOF once the
// stream is exhausted; any other error is a tokenizer failure.
type Source interface {
	Next() (Event, error)
}

// Cursor is a pull cursor over a Source with one event of lookahead.
type Cursor struct {
	src    Source
	peeked bool
	ev     Event
	err    error
	done   bool
	last   Event
}

// NewCursor creates a cursor over src.
func NewCursor(src Source) *Cursor {
	return &Cursor{src: src}
}

// Next consumes and returns the next event. Calling Next on an exhausted
// stream returns ErrUnexpectedEndOfStream.
func (c *Cursor) Next() (Event, error) {
	ev, err := c.Peek()
	if err != nil {
		return Event{}, err
	}
	c.peeked = false
	c.last = ev
	return ev, nil
}

// Peek returns the next event without consuming it.
func (c *Cursor) Peek() (Event, error) {
	if !c.peeked {
		c.fill()
	}
	if c.done {
		return Event{}, ErrUnexpectedEndOfStream
	}
	if c.err != nil {
		return Event{}, c.err
	}
	return c.ev, nil
}

// Exhausted reports whether the source has no further events. It does not
// consume anything.
func (c *Cursor) Exhausted() (bool, error) {
	if !c.peeked {
		c.fill()
	}
	if c.err != nil {
		return false, c.err
	}
	return c.done, nil
}

// Position returns the line and column of the most recently consumed event.
func (c *Cursor) Position() (line, column int) {
	return c.last.Line, c.last.Column
}

func (c *Cursor) fill() {
	if c.done || c.err != nil {
		c.peeked = true
		return
	}
	ev, err := c.src.Next()
	switch {
	case errors.Is(err, io.EOF):
		c.done = true
	case err != nil:
		c.err = err
	default:
		c.ev = ev
	}
	c.peeked = true
}

// SliceSource replays a fixed sequence of events.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource creates a source over events.
func NewSliceSource(events ...Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next returns the next stored event or io.EOF.
func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}
