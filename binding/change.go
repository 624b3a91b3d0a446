package binding

import "fmt"

// ChangeKind identifies what a [ListChanged] notification describes.
type ChangeKind int

const (
	// Reset means the whole list may have changed; consumers must re-read it.
	Reset ChangeKind = iota
	// ItemAdded means an element was inserted at Index.
	ItemAdded
	// ItemDeleted means the element at Index was removed.
	ItemDeleted
	// ItemChanged means the element at Index was replaced or modified in place.
	ItemChanged
	// ItemMoved means the element at OldIndex now lives at Index.
	ItemMoved
	// FieldDescriptorAdded means the element schema gained the field named by Field.
	FieldDescriptorAdded
	// FieldDescriptorDeleted means the element schema lost the field named by Field.
	FieldDescriptorDeleted
	// FieldDescriptorChanged means the field named by Field changed its definition.
	FieldDescriptorChanged
)

var changeKindNames = map[ChangeKind]string{
	Reset:                  "reset",
	ItemAdded:              "item_added",
	ItemDeleted:            "item_deleted",
	ItemChanged:            "item_changed",
	ItemMoved:              "item_moved",
	FieldDescriptorAdded:   "field_added",
	FieldDescriptorDeleted: "field_deleted",
	FieldDescriptorChanged: "field_changed",
}

// String returns the stable snake_case name of the kind.
func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("change_kind(%d)", int(k))
}

// IsStructural reports whether the kind changes positions or membership.
func (k ChangeKind) IsStructural() bool {
	return k == ItemAdded || k == ItemDeleted || k == ItemMoved || k == Reset
}

// IsSchema reports whether the kind describes a field descriptor change
// rather than a data change.
func (k ChangeKind) IsSchema() bool {
	return k == FieldDescriptorAdded || k == FieldDescriptorDeleted || k == FieldDescriptorChanged
}

// ParseChangeKind is the inverse of [ChangeKind.String].
func ParseChangeKind(s string) (ChangeKind, error) {
	for k, name := range changeKindNames {
		if name == s {
			return k, nil
		}
	}
	return Reset, fmt.Errorf("binding: unknown change kind %q", s)
}

// ListChanged describes one change to a list.
//
// Index is the affected position: the inserted, removed or changed
// element, or the destination of a move. OldIndex is the source of a move
// and equals Index for the other item kinds. Both are -1 for Reset and for
// schema changes. Field names the descriptor for schema changes, and the
// modified field for ItemChanged when the source knows it.
type ListChanged struct {
	Kind     ChangeKind
	Index    int
	OldIndex int
	Field    string
}

// ResetEvent returns a Reset notification.
func ResetEvent() ListChanged {
	return ListChanged{Kind: Reset, Index: -1, OldIndex: -1}
}

// AddedAt returns an ItemAdded notification for position i.
func AddedAt(i int) ListChanged {
	return ListChanged{Kind: ItemAdded, Index: i, OldIndex: i}
}

// DeletedAt returns an ItemDeleted notification for position i.
func DeletedAt(i int) ListChanged {
	return ListChanged{Kind: ItemDeleted, Index: i, OldIndex: i}
}

// ChangedAt returns an ItemChanged notification for position i.
// field may be empty when the whole element was replaced.
func ChangedAt(i int, field string) ListChanged {
	return ListChanged{Kind: ItemChanged, Index: i, OldIndex: i, Field: field}
}

// MovedTo returns an ItemMoved notification.
func MovedTo(newIndex, oldIndex int) ListChanged {
	return ListChanged{Kind: ItemMoved, Index: newIndex, OldIndex: oldIndex}
}

// SchemaEvent returns a field descriptor notification of the given kind.
func SchemaEvent(kind ChangeKind, field string) ListChanged {
	return ListChanged{Kind: kind, Index: -1, OldIndex: -1, Field: field}
}

// String renders the notification for logs and traces.
func (e ListChanged) String() string {
	switch {
	case e.Kind.IsSchema():
		return fmt.Sprintf("%s field=%s", e.Kind, e.Field)
	case e.Kind == ItemMoved:
		return fmt.Sprintf("%s index=%d old=%d", e.Kind, e.Index, e.OldIndex)
	case e.Kind == ItemChanged && e.Field != "":
		return fmt.Sprintf("%s index=%d field=%s", e.Kind, e.Index, e.Field)
	default:
		return fmt.Sprintf("%s index=%d", e.Kind, e.Index)
	}
}
