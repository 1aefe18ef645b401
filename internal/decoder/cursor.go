package decoder

import (
	"errors"

	"github.com/frederic-klein/gemspec/internal/event"
)

// next pulls one event, wrapping tokenizer failures.
func next(c *event.Cursor) (event.Event, error) {
	ev, err := c.Next()
	if err != nil {
		return event.Event{}, wrapSourceErr(err)
	}
	return ev, nil
}

func peek(c *event.Cursor) (event.Event, error) {
	ev, err := c.Peek()
	if err != nil {
		return event.Event{}, wrapSourceErr(err)
	}
	return ev, nil
}

func wrapSourceErr(err error) error {
	if errors.Is(err, event.ErrUnexpectedEndOfStream) {
		return err
	}
	return &UnderlyingParseError{Err: err}
}

// scalar pulls one event and coerces it.
func scalar(c *event.Cursor) (Value, error) {
	ev, err := next(c)
	if err != nil {
		return Value{}, err
	}
	return Coerce(ev)
}

func stringValue(c *event.Cursor) (string, error) {
	v, err := scalar(c)
	if err != nil {
		return "", err
	}
	return v.AsString()
}

// mappingKey returns the next key of an open mapping, or ok=false once
// the mapping's end has been consumed.
func mappingKey(c *event.Cursor, container string) (key string, ok bool, err error) {
	ev, err := next(c)
	if err != nil {
		return "", false, err
	}
	if ev.Kind == event.MappingEnd {
		return "", false, nil
	}
	if ev.Kind != event.Scalar {
		return "", false, &UnexpectedEventError{Container: container, Field: "<key>", Expected: "scalar key", Got: ev}
	}
	v, err := Coerce(ev)
	if err != nil {
		return "", false, err
	}
	key, err = v.AsString()
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// openTagged consumes a MappingStart tagged as the given Ruby type.
func openTagged(c *event.Cursor, typeName, container, field string) error {
	ev, err := next(c)
	if err != nil {
		return err
	}
	if ev.Kind != event.MappingStart || !ev.IsRubyObject(typeName) {
		return &UnexpectedEventError{Container: container, Field: field, Expected: "!ruby/object:" + typeName + " mapping", Got: ev}
	}
	return nil
}

// openSequence consumes an untagged SequenceStart.
func openSequence(c *event.Cursor, container, field string) error {
	ev, err := next(c)
	if err != nil {
		return err
	}
	if ev.Kind != event.SequenceStart || ev.Tag != "" {
		return &UnexpectedEventError{Container: container, Field: field, Expected: "sequence", Got: ev}
	}
	return nil
}

// stringSequence collects string scalars through the closing SequenceEnd.
// The SequenceStart must already have been consumed.
func stringSequence(c *event.Cursor) ([]string, error) {
	out := []string{}
	for {
		ev, err := next(c)
		if err != nil {
			return nil, err
		}
		if ev.Kind == event.SequenceEnd {
			return out, nil
		}
		v, err := Coerce(ev)
		if err != nil {
			return nil, err
		}
		s, err := v.AsString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}
