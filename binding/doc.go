// Package binding defines the source side of a bound list: an ordered,
// mutable, randomly indexable [Sequence] of elements, the vocabulary of
// change notifications such a sequence emits, and a concrete observable
// implementation, [List].
//
// # Capabilities
//
// Consumers such as the filtered view in package filtered accept any
// [Sequence] and probe it once for the richer optional interfaces:
//
//	Notifier      change notification stream
//	BlankAdder    create and append a blank element
//	Searcher      find the position of an element by field value
//	Sorter        sort in place by a field
//	Clearer       remove every element at once
//	Typed         publish the element schema (field names)
//	Capabilities  explicit allow/supports flags
//
// When a source does not implement [Capabilities], [CapabilitiesOf]
// derives the flags from the interfaces it does implement.
//
// # Notifications
//
// Every structural mutation of an observable sequence is announced with a
// [ListChanged] value, delivered synchronously and in subscription order
// by [Observers]. Delivery completes before the mutating call returns.
//
//	src := binding.NewList([]string{"alpha", "beta"})
//	sub := src.Subscribe(func(ev binding.ListChanged) {
//	    fmt.Println(ev) // item_added index=2
//	})
//	defer sub.Unsubscribe()
//	src.Append("gamma")
//
// # Threading
//
// Nothing in this package locks. A sequence and everything observing it
// belong to one logical thread of control. Mutating a [List] from inside
// one of its own notification handlers is rejected with
// [ErrReentrantMutation].
package binding
