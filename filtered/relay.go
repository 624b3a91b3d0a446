package filtered

import (
	"fmt"

	"github.com/erikrandall/csla/binding"
)

// relay receives every change of the source, repairs the index while a
// filter is active and republishes the change in view positions.
//
// One source notification is fully processed, repair and republication,
// before the source can deliver the next one.
func (l *List[T]) relay(ev binding.ListChanged) {
	l.trackPending(ev)

	if l.crit == nil {
		l.observers.Publish(ev)
		return
	}

	switch ev.Kind {
	case binding.ItemAdded:
		l.relayAdded(ev)
	case binding.ItemChanged:
		l.relayChanged(ev)
	case binding.ItemDeleted:
		l.relayDeleted(ev)
	case binding.FieldDescriptorAdded, binding.FieldDescriptorDeleted, binding.FieldDescriptorChanged:
		l.observers.Publish(ev)
	default:
		l.rebuild("relay " + ev.Kind.String())
		l.logger.Debug("index rebuilt", "cause", ev.String(), "visible", l.index.len())
		l.observers.Publish(binding.ResetEvent())
	}
}

// relayAdded shifts entries at or after the insertion point and appends an
// entry for the new element when it matches. New matches always go to the
// end of the index; the index is not re-sorted into source order.
func (l *List[T]) relayAdded(ev binding.ListChanged) {
	p := ev.Index
	n := l.src.Len()
	if p < 0 || p >= n {
		l.fault("relay item_added", fmt.Sprintf("position %d outside source [0, %d)", p, n))
	}
	l.index.insertAt(p)

	v, err := l.src.Get(p)
	if err != nil {
		l.fault("relay item_added", err.Error())
	}
	key := l.crit.key(v)
	if !l.crit.match(key) {
		l.logger.Debug("added element filtered out", "source_index", p)
		return
	}
	l.index.entries = append(l.index.entries, entry{key: key, base: p})
	pos := l.index.len() - 1
	l.logger.Debug("added element visible", "source_index", p, "view_index", pos)
	l.observers.Publish(binding.AddedAt(pos))
}

// relayChanged refreshes the cached key of a visible element. Membership is
// not re-evaluated: an element edited so that it no longer matches stays
// visible until the next rebuild, and a hidden element edited so that it
// now matches stays hidden.
func (l *List[T]) relayChanged(ev binding.ListChanged) {
	p := ev.Index
	l.index.touch(p)
	pos := l.index.find(p)
	if pos < 0 {
		return
	}
	v, err := l.src.Get(p)
	if err != nil {
		l.fault("relay item_changed", err.Error())
	}
	l.index.entries[pos].key = l.crit.key(v)
	l.observers.Publish(binding.ChangedAt(pos, ev.Field))
}

// relayDeleted drops the entry of the removed element, if visible, and
// renumbers every later entry.
func (l *List[T]) relayDeleted(ev binding.ListChanged) {
	p := ev.Index
	n := l.src.Len()
	if p < 0 || p > n {
		l.fault("relay item_deleted", fmt.Sprintf("position %d outside source [0, %d]", p, n))
	}
	pos := l.index.deleteAt(p)
	if pos < 0 {
		return
	}
	l.logger.Debug("visible element removed", "source_index", p, "view_index", pos)
	l.observers.Publish(binding.DeletedAt(pos))
}

// trackPending keeps the source position of the pending new element in step
// with structural changes. A reset, or removal of the element, ends it.
func (l *List[T]) trackPending(ev binding.ListChanged) {
	if l.pending < 0 {
		return
	}
	switch ev.Kind {
	case binding.ItemAdded:
		if l.pending >= ev.Index {
			l.pending++
		}
	case binding.ItemDeleted:
		switch {
		case l.pending == ev.Index:
			l.pending = -1
		case l.pending > ev.Index:
			l.pending--
		}
	case binding.ItemMoved:
		switch {
		case l.pending == ev.OldIndex:
			l.pending = ev.Index
		default:
			if l.pending > ev.OldIndex {
				l.pending--
			}
			if l.pending >= ev.Index {
				l.pending++
			}
		}
	case binding.Reset:
		l.pending = -1
	}
}

// afterSourceChange relays a mutation made through the view when the source
// does not announce its own changes.
func (l *List[T]) afterSourceChange(ev binding.ListChanged) {
	if l.notifier != nil {
		return
	}
	l.relay(ev)
}

// fault logs and panics with an *InvariantError. The view cannot continue
// from a corrupted index.
func (l *List[T]) fault(op, detail string) {
	err := &InvariantError{Op: op, Detail: detail}
	l.logger.Error("view index invariant violated", "op", op, "detail", detail)
	panic(err)
}
