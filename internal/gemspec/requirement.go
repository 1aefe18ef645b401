package gemspec

import (
	"fmt"
	"strings"
)

// Operator is a version constraint operator.
type Operator int

const (
	Unknown Operator = iota
	Equal
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	NotEqual
	Tilde
)

var operatorTokens = map[string]Operator{
	"=":  Equal,
	">":  GreaterThan,
	">=": GreaterThanOrEqual,
	"<":  LessThan,
	"<=": LessThanOrEqual,
	"!=": NotEqual,
	"~>": Tilde,
}

// ParseOperator maps a constraint token to an Operator. Unrecognized
// tokens yield Unknown.
func ParseOperator(token string) Operator {
	if op, ok := operatorTokens[token]; ok {
		return op
	}
	return Unknown
}

func (o Operator) String() string {
	switch o {
	case Equal:
		return "="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case NotEqual:
		return "!="
	case Tilde:
		return "~>"
	default:
		return "?"
	}
}

// Constraint pairs an operator with a version. Token is the operator text
// as it appeared in the input.
type Constraint struct {
	Op      Operator
	Token   string
	Version Version
}

// NewConstraint creates a constraint from a known operator.
func NewConstraint(op Operator, v Version) Constraint {
	return Constraint{Op: op, Token: op.String(), Version: v}
}

func (c Constraint) String() string {
	return c.Token + " " + c.Version.String()
}

// SatisfiedBy reports whether v meets the constraint. Unknown operators
// are never satisfied.
func (c Constraint) SatisfiedBy(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case Equal:
		return cmp == 0
	case GreaterThan:
		return cmp > 0
	case GreaterThanOrEqual:
		return cmp >= 0
	case LessThan:
		return cmp < 0
	case LessThanOrEqual:
		return cmp <= 0
	case NotEqual:
		return cmp != 0
	case Tilde:
		return cmp >= 0 && v.Compare(c.Version.Bump()) < 0
	default:
		return false
	}
}

// Requirement is an ordered list of constraints. An empty requirement is
// unconstrained.
type Requirement struct {
	constraints []Constraint
}

// NewRequirement creates a requirement from constraints.
func NewRequirement(constraints ...Constraint) Requirement {
	out := make([]Constraint, len(constraints))
	copy(out, constraints)
	return Requirement{constraints: out}
}

// ParseRequirement parses comma-separated textual constraints such as
// "~> 1.2, < 1.4". A bare version means "=". The empty string is
// unconstrained.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{constraints: []Constraint{}}, nil
	}
	var constraints []Constraint
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		token, rest := splitOperator(part)
		if rest == "" {
			return Requirement{}, fmt.Errorf("parsing requirement %q: missing version", s)
		}
		v, err := ParseVersion(rest)
		if err != nil {
			return Requirement{}, fmt.Errorf("parsing requirement %q: %w", s, err)
		}
		constraints = append(constraints, Constraint{Op: ParseOperator(token), Token: token, Version: v})
	}
	return Requirement{constraints: constraints}, nil
}

func splitOperator(s string) (token, rest string) {
	i := 0
	for i < len(s) && strings.ContainsRune("=<>!~", rune(s[i])) {
		i++
	}
	if i == 0 {
		return "=", s
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// Constraints returns a copy of the constraint list.
func (r Requirement) Constraints() []Constraint {
	out := make([]Constraint, len(r.constraints))
	copy(out, r.constraints)
	return out
}

// Unconstrained reports whether the requirement has no constraints.
func (r Requirement) Unconstrained() bool {
	return len(r.constraints) == 0
}

// SatisfiedBy reports whether v meets every constraint.
func (r Requirement) SatisfiedBy(v Version) bool {
	for _, c := range r.constraints {
		if !c.SatisfiedBy(v) {
			return false
		}
	}
	return true
}

func (r Requirement) String() string {
	if len(r.constraints) == 0 {
		return ">= 0"
	}
	parts := make([]string, len(r.constraints))
	for i, c := range r.constraints {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
