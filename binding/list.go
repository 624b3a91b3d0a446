package binding

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Option configures a [List].
type Option[T any] func(*List[T])

// WithNewItem sets the factory used by [List.AddNewBlank].
// Without one, AddNewBlank returns [ErrNoNewItem] and AllowNew is false.
func WithNewItem[T any](fn func() T) Option[T] {
	return func(l *List[T]) {
		l.newItem = fn
	}
}

// WithFields publishes an element schema. Field names passed to Find and
// ApplySort, and names resolved by consumers, must then be one of these.
func WithFields[T any](names ...string) Option[T] {
	return func(l *List[T]) {
		l.fields = slices.Clone(names)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(l *List[T]) {
		l.logger = logger
	}
}

// List is a slice-backed observable [Sequence]. It implements every
// optional interface of this package.
//
// List is not safe for concurrent use.
type List[T any] struct {
	items     []T
	observers Observers
	newItem   func() T
	fields    []string
	raise     bool
	sortField string
	sortDir   SortDirection
	sorted    bool
	logger    *slog.Logger
}

// NewList returns a list holding a copy of items.
func NewList[T any](items []T, opts ...Option[T]) *List[T] {
	l := &List[T]{
		items:  slices.Clone(items),
		raise:  true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Subscribe registers h for change notifications.
func (l *List[T]) Subscribe(h Handler) *Subscription {
	return l.observers.Subscribe(h)
}

// SetRaiseEvents enables or suspends notifications. Changes made while
// suspended are not replayed; callers usually follow re-enabling with
// [List.ResetBindings].
func (l *List[T]) SetRaiseEvents(raise bool) {
	l.raise = raise
}

// RaiseEvents reports whether notifications are enabled.
func (l *List[T]) RaiseEvents() bool { return l.raise }

func (l *List[T]) publish(ev ListChanged) {
	if !l.raise {
		return
	}
	l.logger.Debug("list changed", "event", ev.String(), "len", len(l.items))
	l.observers.Publish(ev)
}

func (l *List[T]) guard() error {
	if l.observers.Dispatching() {
		return ErrReentrantMutation
	}
	return nil
}

func (l *List[T]) checkIndex(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(l.items))
	}
	return nil
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return len(l.items) }

// Get returns the element at position i.
func (l *List[T]) Get(i int) (T, error) {
	if err := l.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return l.items[i], nil
}

// Set replaces the element at position i and announces ItemChanged.
func (l *List[T]) Set(i int, v T) error {
	if err := l.guard(); err != nil {
		return err
	}
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.items[i] = v
	l.publish(ChangedAt(i, ""))
	return nil
}

// Append adds v at the end and announces ItemAdded.
func (l *List[T]) Append(v T) (int, error) {
	if err := l.guard(); err != nil {
		return -1, err
	}
	l.items = append(l.items, v)
	i := len(l.items) - 1
	l.publish(AddedAt(i))
	return i, nil
}

// Insert places v at position i and announces ItemAdded.
func (l *List[T]) Insert(i int, v T) error {
	if err := l.guard(); err != nil {
		return err
	}
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(l.items))
	}
	l.items = slices.Insert(l.items, i, v)
	l.publish(AddedAt(i))
	return nil
}

// RemoveAt deletes the element at position i and announces ItemDeleted.
func (l *List[T]) RemoveAt(i int) error {
	if err := l.guard(); err != nil {
		return err
	}
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.publish(DeletedAt(i))
	return nil
}

// Clear removes every element and announces Reset.
func (l *List[T]) Clear() error {
	if err := l.guard(); err != nil {
		return err
	}
	clear(l.items)
	l.items = l.items[:0]
	l.publish(ResetEvent())
	return nil
}

// All iterates positions and elements in order.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Items returns a copy of the elements.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// ResetItem announces that the element at position i changed in place.
func (l *List[T]) ResetItem(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.publish(ChangedAt(i, ""))
	return nil
}

// ResetBindings announces Reset without changing anything.
func (l *List[T]) ResetBindings() {
	l.publish(ResetEvent())
}

// AddNewBlank appends a new element from the configured factory.
func (l *List[T]) AddNewBlank() (T, int, error) {
	var zero T
	if err := l.guard(); err != nil {
		return zero, -1, err
	}
	if l.newItem == nil {
		return zero, -1, ErrNoNewItem
	}
	v := l.newItem()
	l.items = append(l.items, v)
	i := len(l.items) - 1
	l.publish(AddedAt(i))
	return v, i, nil
}

// Find returns the position of the first element whose field equals value
// under [CompareValues], or -1.
func (l *List[T]) Find(field string, value any) (int, error) {
	f, ok := ResolveField[T](l, field)
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	for i, v := range l.items {
		if CompareValues(f.Get(v), value) == 0 {
			return i, nil
		}
	}
	return -1, nil
}

// ApplySort stably sorts the elements by field and announces Reset.
func (l *List[T]) ApplySort(field string, dir SortDirection) error {
	if err := l.guard(); err != nil {
		return err
	}
	f, ok := ResolveField[T](l, field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	slices.SortStableFunc(l.items, func(a, b T) int {
		c := CompareValues(f.Get(a), f.Get(b))
		if dir == Descending {
			return -c
		}
		return c
	})
	l.sorted = true
	l.sortField = f.Name
	l.sortDir = dir
	l.publish(ResetEvent())
	return nil
}

// RemoveSort clears the sort state. The current order is kept.
func (l *List[T]) RemoveSort() error {
	if err := l.guard(); err != nil {
		return err
	}
	l.sorted = false
	l.sortField = ""
	l.sortDir = Ascending
	return nil
}

// IsSorted reports whether a sort is applied.
func (l *List[T]) IsSorted() bool { return l.sorted }

// SortField returns the field of the applied sort, or "".
func (l *List[T]) SortField() string { return l.sortField }

// SortDirection returns the direction of the applied sort.
func (l *List[T]) SortDirection() SortDirection { return l.sortDir }

// FieldNames returns the published schema, or nil when none was configured.
func (l *List[T]) FieldNames() []string {
	if l.fields == nil {
		return nil
	}
	return slices.Clone(l.fields)
}

func (l *List[T]) fieldIndex(name string) int {
	return slices.IndexFunc(l.fields, func(f string) bool { return strings.EqualFold(f, name) })
}

// AddField adds name to the schema and announces FieldDescriptorAdded.
func (l *List[T]) AddField(name string) error {
	if err := l.guard(); err != nil {
		return err
	}
	if l.fieldIndex(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrFieldExists, name)
	}
	l.fields = append(l.fields, name)
	l.publish(SchemaEvent(FieldDescriptorAdded, name))
	return nil
}

// RemoveField removes name from the schema and announces
// FieldDescriptorDeleted.
func (l *List[T]) RemoveField(name string) error {
	if err := l.guard(); err != nil {
		return err
	}
	i := l.fieldIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	removed := l.fields[i]
	l.fields = slices.Delete(l.fields, i, i+1)
	l.publish(SchemaEvent(FieldDescriptorDeleted, removed))
	return nil
}

// RenameField renames a schema field and announces FieldDescriptorChanged
// with the new name.
func (l *List[T]) RenameField(oldName, newName string) error {
	if err := l.guard(); err != nil {
		return err
	}
	i := l.fieldIndex(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, oldName)
	}
	if j := l.fieldIndex(newName); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", ErrFieldExists, newName)
	}
	l.fields[i] = newName
	l.publish(SchemaEvent(FieldDescriptorChanged, newName))
	return nil
}

func (l *List[T]) AllowEdit() bool                  { return true }
func (l *List[T]) AllowNew() bool                   { return l.newItem != nil }
func (l *List[T]) AllowRemove() bool                { return true }
func (l *List[T]) SupportsSearching() bool          { return true }
func (l *List[T]) SupportsSorting() bool            { return true }
func (l *List[T]) SupportsChangeNotification() bool { return true }

var (
	_ Sequence[int]   = (*List[int])(nil)
	_ Notifier        = (*List[int])(nil)
	_ BlankAdder[int] = (*List[int])(nil)
	_ Searcher        = (*List[int])(nil)
	_ Sorter          = (*List[int])(nil)
	_ Clearer         = (*List[int])(nil)
	_ Typed           = (*List[int])(nil)
	_ Capabilities    = (*List[int])(nil)
)
