package binding

import (
	"slices"

	"github.com/google/uuid"
)

// Handler receives change notifications.
type Handler func(ListChanged)

// Subscription is the handle returned by [Observers.Subscribe].
type Subscription struct {
	id      string
	handler Handler
	owner   *Observers
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// Unsubscribe stops delivery to the subscription's handler.
// Calling it more than once, or on a nil subscription, is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.owner == nil {
		return
	}
	s.owner.remove(s)
	s.owner = nil
}

// Observers is an ordered list of change handlers.
//
// Publish delivers synchronously, in subscription order, and returns only
// after every handler has returned. Handlers subscribed or removed while a
// publish is in progress take effect from the next publish.
//
// Observers does no locking; see the package documentation.
type Observers struct {
	subs        []*Subscription
	dispatching int
}

// Subscribe appends h to the delivery list.
func (o *Observers) Subscribe(h Handler) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		handler: h,
		owner:   o,
	}
	o.subs = append(o.subs, sub)
	return sub
}

func (o *Observers) remove(target *Subscription) {
	o.subs = slices.DeleteFunc(o.subs, func(s *Subscription) bool { return s == target })
}

// Publish delivers ev to every current subscriber.
func (o *Observers) Publish(ev ListChanged) {
	if len(o.subs) == 0 {
		return
	}
	snapshot := slices.Clone(o.subs)

	o.dispatching++
	defer func() { o.dispatching-- }()

	for _, sub := range snapshot {
		if sub.owner == nil {
			continue // unsubscribed by an earlier handler
		}
		sub.handler(ev)
	}
}

// Dispatching reports whether a publish is in progress.
func (o *Observers) Dispatching() bool { return o.dispatching > 0 }

// Len returns the number of subscribers.
func (o *Observers) Len() int { return len(o.subs) }

// Clear removes every subscriber.
func (o *Observers) Clear() {
	for _, s := range o.subs {
		s.owner = nil
	}
	o.subs = nil
}
