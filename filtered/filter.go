package filtered

import (
	"fmt"

	"github.com/erikrandall/csla/binding"
)

// Criterion is a complete filter: what to extract from each element, how to
// compare it and against what.
type Criterion[T any] struct {
	// Field names the extracted field for reporting. Empty means the whole
	// element.
	Field string

	// Extract returns the key of an element. nil filters on the element
	// itself.
	Extract func(T) any

	// Predicate compares a key with Value. nil uses the view's filter
	// provider.
	Predicate Predicate

	// Value is the filter criterion passed to Predicate.
	Value any
}

// criterion is the resolved, active form of a Criterion.
type criterion[T any] struct {
	field   string
	extract func(T) any
	pred    Predicate
	value   any
}

func (c *criterion[T]) key(v T) any {
	if c.extract == nil {
		return v
	}
	return c.extract(v)
}

func (c *criterion[T]) match(key any) bool {
	return c.pred(key, c.value)
}

// ApplyFilter filters on the named field using the filter provider.
//
// An empty field filters on the whole element. A name that does not resolve
// against the element type also filters on the whole element: this leniency
// is intentional and is logged at debug level rather than reported.
// ActiveFilterField reports no field in both cases.
func (l *List[T]) ApplyFilter(field string, value any) error {
	c := Criterion[T]{Value: value}
	if field != "" {
		if f, ok := binding.ResolveField[T](l.src, field); ok {
			c.Field = f.Name
			c.Extract = f.Get
		} else {
			l.logger.Debug("filter field not resolved, filtering on whole element",
				"field", field)
		}
	}
	return l.ApplyFilterWith(c)
}

// ApplyFilterFunc filters on the whole element with pred.
func (l *List[T]) ApplyFilterFunc(pred Predicate, value any) error {
	return l.ApplyFilterWith(Criterion[T]{Predicate: pred, Value: value})
}

// ApplyFilterWith installs c, rebuilds the index from a full scan of the
// source and announces Reset. A previous filter is replaced.
func (l *List[T]) ApplyFilterWith(c Criterion[T]) error {
	if err := l.guard(); err != nil {
		return err
	}
	pred := c.Predicate
	if pred == nil {
		pred = l.provider
	}
	next := &criterion[T]{
		field:   c.Field,
		extract: c.Extract,
		pred:    pred,
		value:   c.Value,
	}
	entries, err := l.scan(next)
	if err != nil {
		return err
	}

	l.crit = next
	l.index.reset(entries)
	l.logger.Debug("filter applied",
		"field", next.field,
		"visible", len(entries),
		"source_len", l.src.Len())
	l.observers.Publish(binding.ResetEvent())
	return nil
}

// RemoveFilter discards the criterion and the index and announces Reset.
// Calling it on an unfiltered view still announces Reset.
func (l *List[T]) RemoveFilter() {
	l.crit = nil
	l.index.reset(nil)
	l.logger.Debug("filter removed")
	l.observers.Publish(binding.ResetEvent())
}

// Refresh rebuilds the index under the active criterion and announces
// Reset. Views over sources without a change stream use it to pick up
// changes made behind their back.
func (l *List[T]) Refresh() error {
	if err := l.guard(); err != nil {
		return err
	}
	if l.crit != nil {
		entries, err := l.scan(l.crit)
		if err != nil {
			return err
		}
		l.index.reset(entries)
	}
	l.observers.Publish(binding.ResetEvent())
	return nil
}

// IsFiltered reports whether a criterion is active.
func (l *List[T]) IsFiltered() bool { return l.crit != nil }

// ActiveFilterField returns the field the active filter extracts. ok is
// false when unfiltered or when filtering on the whole element.
func (l *List[T]) ActiveFilterField() (field string, ok bool) {
	if l.crit == nil || l.crit.field == "" {
		return "", false
	}
	return l.crit.field, true
}

// FilterValue returns the value of the active criterion, or nil.
func (l *List[T]) FilterValue() any {
	if l.crit == nil {
		return nil
	}
	return l.crit.value
}

// FilterProvider returns the predicate ApplyFilter uses.
func (l *List[T]) FilterProvider() Predicate { return l.provider }

// SetFilterProvider replaces the predicate ApplyFilter uses. nil restores
// DefaultPredicate. The active filter is not re-evaluated.
func (l *List[T]) SetFilterProvider(p Predicate) {
	if p == nil {
		p = DefaultPredicate
	}
	l.provider = p
}

// scan builds a fresh index for c over the whole source, in source order.
func (l *List[T]) scan(c *criterion[T]) ([]entry, error) {
	n := l.src.Len()
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		v, err := l.src.Get(i)
		if err != nil {
			return nil, fmt.Errorf("filtered: scan source position %d: %w", i, err)
		}
		key := c.key(v)
		if c.match(key) {
			entries = append(entries, entry{key: key, base: i})
		}
	}
	return entries, nil
}

// rebuild rescans the source under the active criterion. Failure here means
// the source misreported its length, which is an invariant fault.
func (l *List[T]) rebuild(op string) {
	entries, err := l.scan(l.crit)
	if err != nil {
		l.fault(op, err.Error())
	}
	l.index.reset(entries)
}
