// bytesize.go - parse and format human byte-size strings
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package bytesize wraps go-utils' size parser to additionally keep
// the raw string the caller typed ("4k", "1024", "1.5M"), since the
// hashing cache key must preserve the user's own units rather than
// the parsed integer.
package bytesize

import (
	"github.com/opencoff/go-utils"
)

// Size is a parsed byte count that remembers the string it came from.
type Size struct {
	n   uint64
	raw string
}

// Parse parses a human byte-size string such as "123k", "1.5M", "4096".
// Units B, k, M, G, T, P multiply by 1024^i for i=0..5; the unit letter
// is case-insensitive.
func Parse(s string) (Size, error) {
	n, err := utils.ParseSize(s)
	if err != nil {
		return Size{}, err
	}
	return Size{n: n, raw: s}, nil
}

// Bytes returns the parsed byte count.
func (z Size) Bytes() uint64 {
	return z.n
}

// Raw returns the exact string the value was parsed from, e.g. "4k".
// Empty when the zero-value Size was never set via Set/Parse.
func (z Size) Raw() string {
	return z.raw
}

// IsZero reports whether no size was ever configured (distinct from
// a size explicitly parsed as "0").
func (z Size) IsZero() bool {
	return z.raw == ""
}

// String implements fmt.Stringer by humanizing the byte count, the
// way a log line would report it.
func (z Size) String() string {
	return utils.HumanizeSize(z.n)
}

// Value adapts Size to pflag.Value so it can be used directly as a
// --head/--tail flag target.
type Value struct {
	s *Size
}

// NewValue returns a pflag.Value wrapping dst; dst is updated in place
// on every successful Set.
func NewValue(dst *Size) *Value {
	return &Value{s: dst}
}

func (v *Value) String() string {
	if v.s == nil || v.s.IsZero() {
		return ""
	}
	return v.s.raw
}

func (v *Value) Set(s string) error {
	z, err := Parse(s)
	if err != nil {
		return err
	}
	*v.s = z
	return nil
}

func (v *Value) Type() string {
	return "size"
}
