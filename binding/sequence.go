package binding

import "iter"

// Sequence is the minimal surface of an ordered, mutable, randomly
// indexable collection.
type Sequence[T any] interface {
	// Len returns the number of elements.
	Len() int

	// Get returns the element at position i.
	Get(i int) (T, error)

	// Set replaces the element at position i.
	Set(i int, v T) error

	// Append adds v at the end and returns its position.
	Append(v T) (int, error)

	// Insert places v at position i, shifting later elements up.
	// i == Len() appends.
	Insert(i int, v T) error

	// RemoveAt deletes the element at position i.
	RemoveAt(i int) error

	// All iterates positions and elements in order.
	All() iter.Seq2[int, T]
}

// Notifier is implemented by sources that announce their changes.
type Notifier interface {
	Subscribe(h Handler) *Subscription
}

// BlankAdder is implemented by sources that can create a new, blank element.
// AddNewBlank appends the element and returns it together with its position.
type BlankAdder[T any] interface {
	AddNewBlank() (T, int, error)
}

// Searcher is implemented by sources that can locate an element by the
// value of one of its fields. Find returns -1 when nothing matches.
type Searcher interface {
	Find(field string, value any) (int, error)
}

// SortDirection orders a sort.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// String returns "asc" or "desc".
func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sorter is implemented by sources that can sort themselves by a field.
type Sorter interface {
	ApplySort(field string, dir SortDirection) error
	RemoveSort() error
	IsSorted() bool
	SortField() string
	SortDirection() SortDirection
}

// Clearer is implemented by sources that can remove every element at once.
type Clearer interface {
	Clear() error
}

// Typed is implemented by sources that publish the field names of their
// element type. Field resolution prefers this schema over reflection.
type Typed interface {
	FieldNames() []string
}

// Capabilities is implemented by sources that state their allowed
// operations explicitly.
type Capabilities interface {
	AllowEdit() bool
	AllowNew() bool
	AllowRemove() bool
	SupportsSearching() bool
	SupportsSorting() bool
	SupportsChangeNotification() bool
}

// CapabilityFlags is a snapshot of what a source allows and supports.
type CapabilityFlags struct {
	AllowEdit                  bool
	AllowNew                   bool
	AllowRemove                bool
	SupportsSearching          bool
	SupportsSorting            bool
	SupportsChangeNotification bool
}

// CapabilitiesOf returns the capability flags of src. Sources implementing
// [Capabilities] are asked directly; for the others editing and removal are
// allowed and the remaining flags follow the optional interfaces src
// implements.
func CapabilitiesOf[T any](src Sequence[T]) CapabilityFlags {
	if c, ok := src.(Capabilities); ok {
		return CapabilityFlags{
			AllowEdit:                  c.AllowEdit(),
			AllowNew:                   c.AllowNew(),
			AllowRemove:                c.AllowRemove(),
			SupportsSearching:          c.SupportsSearching(),
			SupportsSorting:            c.SupportsSorting(),
			SupportsChangeNotification: c.SupportsChangeNotification(),
		}
	}
	_, notifies := src.(Notifier)
	_, adds := src.(BlankAdder[T])
	_, searches := src.(Searcher)
	_, sorts := src.(Sorter)
	return CapabilityFlags{
		AllowEdit:                  true,
		AllowNew:                   adds,
		AllowRemove:                true,
		SupportsSearching:          searches,
		SupportsSorting:            sorts,
		SupportsChangeNotification: notifies,
	}
}
