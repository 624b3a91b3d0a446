package filtered

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/erikrandall/csla/binding"
)

// List is a live filtered view over a source [binding.Sequence].
//
// Unfiltered, every operation maps to the same position in the source and
// source notifications pass through unchanged. Filtered, view position i
// maps to the source position held by index entry i.
//
// The source is probed once at construction for its optional capabilities.
// When it is a [binding.Notifier] the view subscribes to it and keeps its
// index in step with every announced change; Close detaches it.
//
// List is not safe for concurrent use; see the package documentation.
type List[T any] struct {
	src      binding.Sequence[T]
	caps     binding.CapabilityFlags
	notifier binding.Notifier
	adder    binding.BlankAdder[T]
	searcher binding.Searcher
	sorter   binding.Sorter
	clearer  binding.Clearer
	sub      *binding.Subscription

	observers binding.Observers
	provider  Predicate
	logger    *slog.Logger

	crit  *criterion[T] // nil while unfiltered
	index viewIndex

	pending int // source position of the pending new element, -1 for none
}

// New returns an unfiltered view over src.
func New[T any](src binding.Sequence[T], opts ...Option) *List[T] {
	cfg := config{
		provider: DefaultPredicate,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = DefaultPredicate
	}

	l := &List[T]{
		src:      src,
		caps:     binding.CapabilitiesOf(src),
		provider: cfg.provider,
		logger:   cfg.logger,
		pending:  -1,
	}
	l.notifier, _ = src.(binding.Notifier)
	l.adder, _ = src.(binding.BlankAdder[T])
	l.searcher, _ = src.(binding.Searcher)
	l.sorter, _ = src.(binding.Sorter)
	l.clearer, _ = src.(binding.Clearer)

	if l.notifier != nil {
		l.sub = l.notifier.Subscribe(l.relay)
	}
	return l
}

// Close detaches the view from the source's change stream. The view keeps
// its last state.
func (l *List[T]) Close() {
	l.sub.Unsubscribe()
	l.sub = nil
}

// Source returns the underlying sequence.
func (l *List[T]) Source() binding.Sequence[T] { return l.src }

// Subscribe registers h for notifications in view positions.
func (l *List[T]) Subscribe(h binding.Handler) *binding.Subscription {
	return l.observers.Subscribe(h)
}

func (l *List[T]) guard() error {
	if l.observers.Dispatching() {
		return binding.ErrReentrantMutation
	}
	return nil
}

// ============================================================================
// Position translation
// ============================================================================

// base returns the source position for view position i.
func (l *List[T]) base(i int) (int, error) {
	n := l.Len()
	if i < 0 || i >= n {
		return -1, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, n)
	}
	if l.crit == nil {
		return i, nil
	}
	b := l.index.entries[i].base
	if srcLen := l.src.Len(); b < 0 || b >= srcLen {
		return -1, &InvariantError{
			Op:     "translate",
			Detail: fmt.Sprintf("view position %d maps to %d outside source [0, %d)", i, b, srcLen),
		}
	}
	return b, nil
}

// OriginalIndex returns the source position of view position i.
func (l *List[T]) OriginalIndex(i int) (int, error) {
	return l.base(i)
}

// FilteredIndex returns the view position of source position p, or -1 when
// the element at p is not visible.
func (l *List[T]) FilteredIndex(p int) int {
	if l.crit == nil {
		if p < 0 || p >= l.src.Len() {
			return -1
		}
		return p
	}
	return l.index.find(p)
}

// Entries returns a copy of the index. It is nil while unfiltered.
func (l *List[T]) Entries() []Entry {
	if l.crit == nil {
		return nil
	}
	return l.index.snapshot()
}

// CheckIndex verifies the index against the source: every entry in bounds,
// no duplicates, and the same membership a full rebuild would produce.
// Source positions changed in place since the last rebuild are exempt from
// the membership comparison, since changes do not re-evaluate the filter.
func (l *List[T]) CheckIndex() error {
	if l.crit == nil {
		return nil
	}
	if err := l.index.validate(l.src.Len()); err != nil {
		return &InvariantError{Op: "check", Detail: err.Error()}
	}
	fresh, err := l.scan(l.crit)
	if err != nil {
		return &InvariantError{Op: "check", Detail: err.Error()}
	}

	want := make(map[int]bool, len(fresh))
	for _, e := range fresh {
		want[e.base] = true
	}
	have := make(map[int]bool, l.index.len())
	for _, e := range l.index.entries {
		have[e.base] = true
	}
	var diverged []int
	for b := range want {
		if !have[b] && !slices.Contains(l.index.touched, b) {
			diverged = append(diverged, b)
		}
	}
	for b := range have {
		if !want[b] && !slices.Contains(l.index.touched, b) {
			diverged = append(diverged, b)
		}
	}
	if len(diverged) > 0 {
		slices.Sort(diverged)
		return &InvariantError{
			Op:     "check",
			Detail: fmt.Sprintf("membership differs from rebuild at source positions %v", diverged),
		}
	}
	return nil
}

// ============================================================================
// Element access
// ============================================================================

// Len returns the number of visible elements.
func (l *List[T]) Len() int {
	if l.crit == nil {
		return l.src.Len()
	}
	return l.index.len()
}

// Get returns the element at view position i.
func (l *List[T]) Get(i int) (T, error) {
	b, err := l.base(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return l.src.Get(b)
}

// Set replaces the element at view position i in the source.
func (l *List[T]) Set(i int, v T) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !l.caps.AllowEdit {
		return unsupported("edit")
	}
	b, err := l.base(i)
	if err != nil {
		return err
	}
	if err := l.src.Set(b, v); err != nil {
		return err
	}
	l.afterSourceChange(binding.ChangedAt(b, ""))
	return nil
}

// Append adds v to the end of the source. It returns the view position of
// the new element, or -1 when the active filter hides it.
func (l *List[T]) Append(v T) (int, error) {
	if err := l.guard(); err != nil {
		return -1, err
	}
	p, err := l.src.Append(v)
	if err != nil {
		return -1, err
	}
	l.afterSourceChange(binding.AddedAt(p))
	return l.FilteredIndex(p), nil
}

// Insert places v at view position i. Unfiltered, this inserts into the
// source at i. Filtered, i is only validated against [0, Len()] and v is
// appended to the source; the filter decides where, if at all, it shows.
func (l *List[T]) Insert(i int, v T) error {
	if err := l.guard(); err != nil {
		return err
	}
	if n := l.Len(); i < 0 || i > n {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, n)
	}
	if l.crit != nil {
		_, err := l.Append(v)
		return err
	}
	if err := l.src.Insert(i, v); err != nil {
		return err
	}
	l.afterSourceChange(binding.AddedAt(i))
	return nil
}

// RemoveAt removes the element at view position i from the source. The
// index is updated by the source's removal notification, not here.
func (l *List[T]) RemoveAt(i int) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !l.caps.AllowRemove {
		return unsupported("remove")
	}
	b, err := l.base(i)
	if err != nil {
		return err
	}
	return l.removeSource(b)
}

func (l *List[T]) removeSource(b int) error {
	if err := l.src.RemoveAt(b); err != nil {
		return err
	}
	l.afterSourceChange(binding.DeletedAt(b))
	return nil
}

// Clear removes every visible element from the source. Unfiltered, a
// source implementing binding.Clearer is cleared in one call. Filtered,
// only visible elements are removed, highest source position first.
func (l *List[T]) Clear() error {
	if err := l.guard(); err != nil {
		return err
	}
	if !l.caps.AllowRemove {
		return unsupported("remove")
	}
	if l.crit == nil && l.clearer != nil {
		if err := l.clearer.Clear(); err != nil {
			return err
		}
		l.afterSourceChange(binding.ResetEvent())
		return nil
	}

	bases := make([]int, 0, l.Len())
	if l.crit == nil {
		for i := range l.src.Len() {
			bases = append(bases, i)
		}
	} else {
		for _, e := range l.index.entries {
			bases = append(bases, e.base)
		}
	}
	slices.SortFunc(bases, func(a, b int) int { return cmp.Compare(b, a) })
	for _, b := range bases {
		if err := l.removeSource(b); err != nil {
			return err
		}
	}
	return nil
}

// All iterates the visible elements in view order. A source that fails to
// return an indexed element is an invariant fault and panics.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < l.Len(); i++ {
			v, err := l.Get(i)
			if err != nil {
				l.fault("iterate", err.Error())
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// IndexFunc returns the view position of the first element satisfying fn,
// or -1.
func (l *List[T]) IndexFunc(fn func(T) bool) int {
	for i, v := range l.All() {
		if fn(v) {
			return i
		}
	}
	return -1
}

// ============================================================================
// Pending new element
// ============================================================================

// AddNewBlank creates a new element through the source and remembers it as
// pending until EndNewBlank, CancelNewBlank, its removal or a reset.
func (l *List[T]) AddNewBlank() (T, error) {
	var zero T
	if err := l.guard(); err != nil {
		return zero, err
	}
	if l.adder == nil || !l.caps.AllowNew {
		return zero, unsupported("add new")
	}
	v, p, err := l.adder.AddNewBlank()
	if err != nil {
		return zero, err
	}
	l.afterSourceChange(binding.AddedAt(p))
	l.pending = p
	return v, nil
}

// CancelNewBlank removes the pending new element from the source.
func (l *List[T]) CancelNewBlank() error {
	if err := l.guard(); err != nil {
		return err
	}
	if l.pending < 0 {
		return ErrNoPendingItem
	}
	p := l.pending
	l.pending = -1
	return l.removeSource(p)
}

// EndNewBlank commits the pending new element. It is a no-op when none is
// pending.
func (l *List[T]) EndNewBlank() {
	l.pending = -1
}

// PendingNewItem returns the source position of the pending new element.
func (l *List[T]) PendingNewItem() (int, bool) {
	return l.pending, l.pending >= 0
}

// ============================================================================
// Source proxies
// ============================================================================

// Find delegates to the source's search and returns the view position of
// the match, or -1 when nothing matches or the match is not visible. There
// is no fallback scan for sources that cannot search.
func (l *List[T]) Find(field string, value any) (int, error) {
	if l.searcher == nil || !l.caps.SupportsSearching {
		return -1, unsupported("find")
	}
	p, err := l.searcher.Find(field, value)
	if err != nil {
		return -1, err
	}
	if p < 0 {
		return -1, nil
	}
	return l.FilteredIndex(p), nil
}

// ApplySort sorts the source.
func (l *List[T]) ApplySort(field string, dir binding.SortDirection) error {
	if err := l.guard(); err != nil {
		return err
	}
	if l.sorter == nil || !l.caps.SupportsSorting {
		return unsupported("sort")
	}
	if err := l.sorter.ApplySort(field, dir); err != nil {
		return err
	}
	l.afterSourceChange(binding.ResetEvent())
	return nil
}

// RemoveSort removes the source's sort.
func (l *List[T]) RemoveSort() error {
	if l.sorter == nil || !l.caps.SupportsSorting {
		return unsupported("sort")
	}
	return l.sorter.RemoveSort()
}

// IsSorted reports whether the source is sorted.
func (l *List[T]) IsSorted() bool {
	return l.sorter != nil && l.sorter.IsSorted()
}

// SortField returns the source's sort field.
func (l *List[T]) SortField() string {
	if l.sorter == nil {
		return ""
	}
	return l.sorter.SortField()
}

// SortDirection returns the source's sort direction.
func (l *List[T]) SortDirection() binding.SortDirection {
	if l.sorter == nil {
		return binding.Ascending
	}
	return l.sorter.SortDirection()
}

// Capabilities returns the source's capability flags, probed at
// construction. They are the same whether or not a filter is active.
func (l *List[T]) Capabilities() binding.CapabilityFlags { return l.caps }

func (l *List[T]) AllowEdit() bool                  { return l.caps.AllowEdit }
func (l *List[T]) AllowNew() bool                   { return l.caps.AllowNew }
func (l *List[T]) AllowRemove() bool                { return l.caps.AllowRemove }
func (l *List[T]) SupportsSearching() bool          { return l.caps.SupportsSearching }
func (l *List[T]) SupportsSorting() bool            { return l.caps.SupportsSorting }
func (l *List[T]) SupportsChangeNotification() bool { return l.caps.SupportsChangeNotification }

var (
	_ binding.Sequence[int] = (*List[int])(nil)
	_ binding.Notifier      = (*List[int])(nil)
	_ binding.Searcher      = (*List[int])(nil)
	_ binding.Sorter        = (*List[int])(nil)
	_ binding.Clearer       = (*List[int])(nil)
	_ binding.Capabilities  = (*List[int])(nil)
)
