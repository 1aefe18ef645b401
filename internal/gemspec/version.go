package gemspec

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one dot-separated component of a version string. A segment is
// either numeric or textual.
type Segment struct {
	num     uint64
	text    string
	numeric bool
}

// Number returns a numeric segment.
func Number(n uint64) Segment {
	return Segment{num: n, numeric: true}
}

// Text returns a textual segment.
func Text(s string) Segment {
	return Segment{text: s}
}

// IsNumber reports whether the segment is numeric.
func (s Segment) IsNumber() bool {
	return s.numeric
}

// Uint returns the numeric value. It is zero for textual segments.
func (s Segment) Uint() uint64 {
	return s.num
}

func (s Segment) String() string {
	if s.numeric {
		return strconv.FormatUint(s.num, 10)
	}
	return s.text
}

// Compare orders segments: numeric before textual, numbers by value,
// text lexically.
func (s Segment) Compare(o Segment) int {
	switch {
	case s.numeric && o.numeric:
		switch {
		case s.num < o.num:
			return -1
		case s.num > o.num:
			return 1
		}
		return 0
	case s.numeric:
		return -1
	case o.numeric:
		return 1
	}
	return strings.Compare(s.text, o.text)
}

// MalformedVersionError is returned for version strings with an empty
// segment.
type MalformedVersionError struct {
	Text string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: empty segment", e.Text)
}

// Version is a dotted version string together with its segments.
// Joining the segments with "." reproduces the original text.
type Version struct {
	text     string
	segments []Segment
}

// ParseVersion splits s on "." and types each piece. A piece that parses
// as a non-negative 64-bit integer is numeric; anything else is textual.
func ParseVersion(s string) (Version, error) {
	pieces := strings.Split(s, ".")
	segments := make([]Segment, 0, len(pieces))
	for _, p := range pieces {
		if p == "" {
			return Version{}, &MalformedVersionError{Text: s}
		}
		if n, err := strconv.ParseUint(p, 10, 64); err == nil {
			segments = append(segments, Number(n))
		} else {
			segments = append(segments, Text(p))
		}
	}
	return Version{text: s, segments: segments}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original version text.
func (v Version) String() string {
	return v.text
}

// Segments returns a copy of the version's segments.
func (v Version) Segments() []Segment {
	out := make([]Segment, len(v.segments))
	copy(out, v.segments)
	return out
}

// IsZero reports whether v is the zero Version (never produced by parsing).
func (v Version) IsZero() bool {
	return v.text == "" && len(v.segments) == 0
}

// Prerelease reports whether any segment is textual.
func (v Version) Prerelease() bool {
	for _, s := range v.segments {
		if !s.numeric {
			return true
		}
	}
	return false
}

// Compare returns -1, 0 or 1. Segments are compared pairwise; the shorter
// version is padded with numeric zeros.
func (v Version) Compare(o Version) int {
	n := max(len(v.segments), len(o.segments))
	for i := 0; i < n; i++ {
		a, b := Number(0), Number(0)
		if i < len(v.segments) {
			a = v.segments[i]
		}
		if i < len(o.segments) {
			b = o.segments[i]
		}
		if c := a.Compare(b); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether v and o compare equal ("1" equals "1.0").
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Bump returns the upper bound used by the pessimistic operator: trailing
// textual segments are dropped, then the last segment is dropped when more
// than one remains, and the new last segment is incremented.
func (v Version) Bump() Version {
	segs := v.Segments()
	if len(segs) == 0 {
		return v
	}
	for len(segs) > 1 && !segs[len(segs)-1].numeric {
		segs = segs[:len(segs)-1]
	}
	if len(segs) > 1 {
		segs = segs[:len(segs)-1]
	}
	if last := segs[len(segs)-1]; last.numeric {
		segs[len(segs)-1] = Number(last.num + 1)
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return Version{text: strings.Join(parts, "."), segments: segs}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.text), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
