package vm

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Value: Tagged union carried on the operand stack
// ---------------------------------------------------------------------------

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
	KindBoolean
	KindNumArrayRef
	KindStrArrayRef
)

var kindNames = [...]string{
	KindNumber:      "number",
	KindString:      "string",
	KindBoolean:     "boolean",
	KindNumArrayRef: "numeric array",
	KindStrArrayRef: "string array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is the unit of communication between instructions.
// Array references share the underlying *Array; copying a Value never
// copies array storage.
type Value struct {
	Kind Kind    `cbor:"k"`
	Num  float64 `cbor:"n,omitempty"`
	Str  string  `cbor:"s,omitempty"`

	arr *Array
}

// Num returns a numeric value.
func Num(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Str returns a string value.
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBoolean, Num: 1}
	}
	return Value{Kind: KindBoolean}
}

// ArrayRef returns a reference to a, typed by the array's element kind.
func ArrayRef(a *Array) Value {
	if a.IsString() {
		return Value{Kind: KindStrArrayRef, arr: a}
	}
	return Value{Kind: KindNumArrayRef, arr: a}
}

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.Kind == KindString }

// IsArray reports whether v holds an array reference.
func (v Value) IsArray() bool {
	return v.Kind == KindNumArrayRef || v.Kind == KindStrArrayRef
}

// Array returns the referenced array, or nil.
func (v Value) Array() *Array { return v.arr }

// Float converts numbers and booleans to float64. Strings yield 0.
func (v Value) Float() float64 {
	switch v.Kind {
	case KindNumber, KindBoolean:
		return v.Num
	}
	return 0
}

// Truthy reports the value's truth for conditional jumps.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber, KindBoolean:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindString:
		return v.Str != ""
	}
	return v.arr != nil
}

// Numeric reports whether v can take part in arithmetic.
func (v Value) Numeric() bool {
	return v.Kind == KindNumber || v.Kind == KindBoolean
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindBoolean:
		if v.Num != 0 {
			return "true"
		}
		return "false"
	case KindNumArrayRef, KindStrArrayRef:
		if v.arr != nil {
			return fmt.Sprintf("<%s %s>", v.Kind, v.arr.Name)
		}
		return fmt.Sprintf("<%s>", v.Kind)
	}
	return "<invalid>"
}
