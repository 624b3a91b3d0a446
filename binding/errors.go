package binding

import "errors"

// Sentinel errors returned by sources in this package.
var (
	// ErrIndexOutOfRange is returned when a position is outside [0, Len()).
	ErrIndexOutOfRange = errors.New("binding: index out of range")

	// ErrReentrantMutation is returned when a list is mutated from inside one
	// of its own change handlers.
	ErrReentrantMutation = errors.New("binding: mutation during change notification")

	// ErrNoNewItem is returned by AddNewBlank when no element factory was
	// configured.
	ErrNoNewItem = errors.New("binding: no new item factory configured")

	// ErrUnknownField is returned by search and sort when the field name does
	// not resolve against the element type.
	ErrUnknownField = errors.New("binding: unknown field")

	// ErrFieldExists is returned by AddField for a name already in the schema.
	ErrFieldExists = errors.New("binding: field already exists")
)
