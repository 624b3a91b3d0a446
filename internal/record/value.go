// Package record provides the dynamic element type used by the filterview
// tooling: a flat object of named scalar values.
//
// Key design constraints:
//   - Values are sealed: Null, String, Int, Bool. No floats; decoded
//     integral floats become Int, fractional ones are rejected
//   - Objects are flat; nested objects and arrays are rejected
//   - Canonical JSON (sorted keys, NFC strings) is the identity of an Object
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"unicode/utf16"

	"github.com/erikrandall/csla/binding"
)

// Value is a sealed interface over the scalar types a record field holds.
type Value interface {
	recordValue()
}

// Null is an explicit null field value.
type Null struct{}

func (Null) recordValue() {}

// String is a string field value.
type String string

func (String) recordValue() {}

// Int is an integer field value. Always int64.
type Int int64

func (Int) recordValue() {}

// Bool is a boolean field value.
type Bool bool

func (Bool) recordValue() {}

// Native returns the plain Go value of v: nil, string, int64 or bool.
func Native(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case Int:
		return int64(x)
	case Bool:
		return bool(x)
	default:
		return nil
	}
}

// FromAny converts a decoded YAML or JSON scalar into a Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of int64 range", x)
		}
		return Int(int64(x)), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return nil, fmt.Errorf("non-integral number %v is not allowed", x)
		}
		return Int(int64(x)), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integral number %s is not allowed", x)
		}
		return Int(n), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Object is a flat record of named values.
type Object map[string]Value

// FromMap converts a decoded YAML or JSON mapping into an Object.
func FromMap(m map[string]any) (Object, error) {
	obj := make(Object, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		obj[k] = v
	}
	return obj, nil
}

// Field implements binding.FieldAccessor. Values are returned in their
// Native form; a missing field reports false.
func (o Object) Field(name string) (any, bool) {
	v, ok := o[name]
	if !ok {
		return nil, false
	}
	return Native(v), true
}

// Get returns the Native value of name, or nil.
func (o Object) Get(name string) any {
	v, _ := o.Field(name)
	return v
}

// With returns a copy of o with name set to v.
func (o Object) With(name string, v Value) Object {
	out := make(Object, len(o)+1)
	for k, x := range o {
		out[k] = x
	}
	out[name] = v
	return out
}

// String renders o as canonical JSON.
func (o Object) String() string {
	b, err := MarshalCanonical(o)
	if err != nil {
		return fmt.Sprintf("record(%d fields)", len(o))
	}
	return string(b)
}

// Equal reports whether o and other hold the same fields and values.
func (o Object) Equal(other Object) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		w, ok := other[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// UnmarshalJSON implements json.Unmarshaler. Numbers must be integers.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	obj, err := FromMap(raw)
	if err != nil {
		return err
	}
	*o = obj
	return nil
}

// MarshalJSON implements json.Marshaler with canonical output.
func (o Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(o)
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

var _ binding.FieldAccessor = Object(nil)
