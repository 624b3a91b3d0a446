package binding

import (
	"reflect"
	"strings"
)

// FieldAccessor is implemented by dynamic element types that expose named
// fields at runtime (records, maps). It is the escape hatch for elements
// whose fields are not Go struct fields.
type FieldAccessor interface {
	Field(name string) (any, bool)
}

// Field describes one resolved field of T.
type Field[T any] struct {
	Name string
	Get  func(T) any
}

// ResolveField resolves name against the fields of T, once.
//
// Resolution order:
//  1. src implements [Typed] and publishes a non-nil schema: name must be
//     one of FieldNames (case-insensitive); values are read through
//     [FieldAccessor].
//  2. T is a struct or pointer to struct: an exported field whose Go name or
//     json tag equals name (case-insensitive).
//  3. T implements [FieldAccessor]: name is accepted as is.
//
// ok is false when name is empty or nothing matches.
func ResolveField[T any](src any, name string) (f Field[T], ok bool) {
	if name == "" {
		return Field[T]{}, false
	}
	if typed, isTyped := src.(Typed); isTyped {
		if names := typed.FieldNames(); names != nil {
			for _, candidate := range names {
				if !strings.EqualFold(candidate, name) {
					continue
				}
				if sf, isStruct := structField[T](candidate); isStruct {
					return sf, true
				}
				return Field[T]{Name: candidate, Get: accessorGetter[T](candidate)}, true
			}
			return Field[T]{}, false
		}
	}
	if f, ok := structField[T](name); ok {
		return f, true
	}
	if reflect.TypeFor[T]().Implements(reflect.TypeFor[FieldAccessor]()) {
		return Field[T]{Name: name, Get: accessorGetter[T](name)}, true
	}
	return Field[T]{}, false
}

func accessorGetter[T any](name string) func(T) any {
	return func(v T) any {
		a, ok := any(v).(FieldAccessor)
		if !ok {
			return nil
		}
		val, _ := a.Field(name)
		return val
	}
}

func structField[T any](name string) (Field[T], bool) {
	t := reflect.TypeFor[T]()
	isPtr := t.Kind() == reflect.Pointer
	if isPtr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Field[T]{}, false
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if !strings.EqualFold(sf.Name, name) && !strings.EqualFold(jsonName(sf), name) {
			continue
		}
		index := sf.Index
		get := func(v T) any {
			rv := reflect.ValueOf(any(v))
			if isPtr {
				if rv.IsNil() {
					return nil
				}
				rv = rv.Elem()
			}
			return rv.FieldByIndex(index).Interface()
		}
		return Field[T]{Name: sf.Name, Get: get}, true
	}
	return Field[T]{}, false
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
