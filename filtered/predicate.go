package filtered

import (
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/erikrandall/csla/binding"
)

// Predicate decides whether an extracted key passes the filter value.
type Predicate func(key, filter any) bool

// fold returns the NFC-normalized case fold of s, the form every text
// predicate in this package compares.
func fold(s string) string {
	return norm.NFC.String(cases.Fold().String(norm.NFC.String(s)))
}

// DefaultPredicate reports whether the text of filter is a prefix of the
// text of key, ignoring case. A nil key or nil filter never matches.
func DefaultPredicate(key, filter any) bool {
	if key == nil || filter == nil {
		return false
	}
	return strings.HasPrefix(fold(binding.Text(key)), fold(binding.Text(filter)))
}

// ContainsText reports whether the text of filter occurs anywhere in the text
// of key, ignoring case.
func ContainsText(key, filter any) bool {
	if key == nil || filter == nil {
		return false
	}
	return strings.Contains(fold(binding.Text(key)), fold(binding.Text(filter)))
}

// Equals reports whether key and filter compare equal under
// binding.CompareValues: numbers by value, everything else by text.
func Equals(key, filter any) bool {
	if key == nil || filter == nil {
		return key == nil && filter == nil
	}
	return binding.CompareValues(key, filter) == 0
}

// AnyPrefix treats filter as a list of prefixes and reports whether any of
// them is a case-insensitive prefix of the text of key. A filter that is
// not a slice or array behaves like DefaultPredicate.
func AnyPrefix(key, filter any) bool {
	if key == nil || filter == nil {
		return false
	}
	rv := reflect.ValueOf(filter)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return DefaultPredicate(key, filter)
	}
	text := fold(binding.Text(key))
	for i := 0; i < rv.Len(); i++ {
		p := rv.Index(i).Interface()
		if p == nil {
			continue
		}
		if strings.HasPrefix(text, fold(binding.Text(p))) {
			return true
		}
	}
	return false
}
