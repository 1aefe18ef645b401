package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frederic-klein/gemspec/internal/event"
)

// ScalarKind is the resolved type of a scalar.
type ScalarKind int

const (
	Null ScalarKind = iota
	Bool
	Int
	Str
)

func (k ScalarKind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Str:
		return "string"
	default:
		return fmt.Sprintf("ScalarKind(%d)", int(k))
	}
}

// Value is a coerced scalar.
type Value struct {
	Kind ScalarKind
	Str  string
	Int  int64
	Bool bool
}

func (v Value) describe() string {
	switch v.Kind {
	case Bool:
		return fmt.Sprintf("boolean %t", v.Bool)
	case Int:
		return fmt.Sprintf("integer %d", v.Int)
	case Str:
		return fmt.Sprintf("string %q", v.Str)
	default:
		return "null"
	}
}

var coreTagKinds = map[string]ScalarKind{
	"!!null": Null,
	"!!bool": Bool,
	"!!int":  Int,
}

// resolveTagged resolves a scalar carrying a core tag and fails when the
// text does not resolve to the kind the tag names.
func resolveTagged(ev event.Event) (Value, error) {
	v := resolvePlain(ev.Value)
	if want := coreTagKinds[ev.Tag]; v.Kind != want {
		return Value{}, &ScalarCoercionError{Expected: want.String(), Got: fmt.Sprintf("%s %q", ev.Tag, ev.Value)}
	}
	return v, nil
}

// Coerce resolves a scalar event to null, boolean, integer or string.
//
// Quoted and block scalars are always strings. Plain scalars are null when
// empty or "~"/"null", booleans for true/false in any case, integers when
// they match [-+]?(0|[1-9][0-9]*) and fit in 64 bits, and strings otherwise.
func Coerce(ev event.Event) (Value, error) {
	if ev.Kind != event.Scalar {
		return Value{}, &ScalarCoercionError{Expected: "scalar", Got: ev.String()}
	}
	switch ev.Tag {
	case "":
	case "!!str":
		return Value{Kind: Str, Str: ev.Value}, nil
	case "!!null", "!!bool", "!!int":
		return resolveTagged(ev)
	default:
		return Value{}, &ScalarCoercionError{Expected: "untagged scalar", Got: "tag " + ev.Tag}
	}
	if ev.Style != event.Plain {
		return Value{Kind: Str, Str: ev.Value}, nil
	}
	return resolvePlain(ev.Value), nil
}

func resolvePlain(s string) Value {
	switch s {
	case "", "~", "null", "Null", "NULL":
		return Value{Kind: Null}
	}
	if strings.EqualFold(s, "true") {
		return Value{Kind: Bool, Bool: true}
	}
	if strings.EqualFold(s, "false") {
		return Value{Kind: Bool, Bool: false}
	}
	if isInteger(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Value{Kind: Int, Int: n}
		}
	}
	return Value{Kind: Str, Str: s}
}

func isInteger(s string) bool {
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AsString returns the text of a Str value.
func (v Value) AsString() (string, error) {
	if v.Kind != Str {
		return "", &ScalarCoercionError{Expected: "string", Got: v.describe()}
	}
	return v.Str, nil
}

// AsInt returns the value of an Int.
func (v Value) AsInt() (int64, error) {
	if v.Kind != Int {
		return 0, &ScalarCoercionError{Expected: "integer", Got: v.describe()}
	}
	return v.Int, nil
}

// AsBool returns the value of a Bool.
func (v Value) AsBool() (bool, error) {
	if v.Kind != Bool {
		return false, &ScalarCoercionError{Expected: "boolean", Got: v.describe()}
	}
	return v.Bool, nil
}

// AsOptionalString returns nil for Null and the text for Str.
func (v Value) AsOptionalString() (*string, error) {
	switch v.Kind {
	case Null:
		return nil, nil
	case Str:
		s := v.Str
		return &s, nil
	}
	return nil, &ScalarCoercionError{Expected: "string or null", Got: v.describe()}
}
