package decoder

import (
	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// decodeRequirement reads the body of a Gem::Requirement mapping through
// its MappingEnd. A requirement without a "requirements" key is
// unconstrained, as is an empty list.
func decodeRequirement(c *event.Cursor) (gemspec.Requirement, error) {
	var (
		constraints []gemspec.Constraint
		seen        bool
	)
	for {
		key, ok, err := mappingKey(c, ContainerRequirement)
		if err != nil {
			return gemspec.Requirement{}, err
		}
		if !ok {
			break
		}
		if key != "requirements" {
			return gemspec.Requirement{}, &UnknownFieldError{Container: ContainerRequirement, Field: key}
		}
		if seen {
			return gemspec.Requirement{}, &DuplicateFieldError{Container: ContainerRequirement, Field: key}
		}
		seen = true
		if constraints, err = constraintList(c); err != nil {
			return gemspec.Requirement{}, err
		}
	}
	return gemspec.NewRequirement(constraints...), nil
}

// constraintList reads a sequence of [operator, version] pairs.
func constraintList(c *event.Cursor) ([]gemspec.Constraint, error) {
	if err := openSequence(c, ContainerRequirement, "requirements"); err != nil {
		return nil, err
	}
	var out []gemspec.Constraint
	for {
		ev, err := next(c)
		if err != nil {
			return nil, err
		}
		switch {
		case ev.Kind == event.SequenceEnd:
			return out, nil
		case ev.Kind == event.SequenceStart && ev.Tag == "":
			pair, err := constraintPair(c)
			if err != nil {
				return nil, err
			}
			out = append(out, pair)
		default:
			return nil, &UnexpectedEventError{Container: ContainerRequirement, Field: "requirements", Expected: "[operator, version] pair", Got: ev}
		}
	}
}

func constraintPair(c *event.Cursor) (gemspec.Constraint, error) {
	token, err := stringValue(c)
	if err != nil {
		return gemspec.Constraint{}, err
	}
	v, err := taggedVersion(c, ContainerRequirement, "requirements")
	if err != nil {
		return gemspec.Constraint{}, err
	}
	ev, err := next(c)
	if err != nil {
		return gemspec.Constraint{}, err
	}
	if ev.Kind != event.SequenceEnd {
		return gemspec.Constraint{}, &UnexpectedEventError{Container: ContainerRequirement, Field: "requirements", Expected: "end of pair", Got: ev}
	}
	return gemspec.Constraint{Op: gemspec.ParseOperator(token), Token: token, Version: v}, nil
}

func taggedRequirement(c *event.Cursor, container, field string) (gemspec.Requirement, error) {
	if err := openTagged(c, tagRequirement, container, field); err != nil {
		return gemspec.Requirement{}, err
	}
	return decodeRequirement(c)
}
