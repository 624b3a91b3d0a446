// Package trace records the change notifications of a filtered view and its
// source as an ordered, seq-stamped list of events.
package trace

import (
	"fmt"
	"strings"

	"github.com/erikrandall/csla/binding"
)

// Origins of recorded events.
const (
	OriginSource = "source"
	OriginView   = "view"
)

// Event is one recorded notification.
type Event struct {
	Seq      int64  `json:"seq"`
	RunID    string `json:"run_id"`
	Origin   string `json:"origin"`
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
	OldIndex int    `json:"old_index"`
	Field    string `json:"field,omitempty"`
	Len      int    `json:"len"`
}

// Change reconstructs the notification the event was recorded from.
func (e Event) Change() (binding.ListChanged, error) {
	kind, err := binding.ParseChangeKind(e.Kind)
	if err != nil {
		return binding.ListChanged{}, err
	}
	return binding.ListChanged{Kind: kind, Index: e.Index, OldIndex: e.OldIndex, Field: e.Field}, nil
}

// Text renders the event as one trace line, without run id so that traces
// of different runs compare equal.
//
//	0003 view item_added index=2 len=3
func (e Event) Text() string {
	ev, err := e.Change()
	desc := fmt.Sprintf("%s index=%d", e.Kind, e.Index)
	if err == nil {
		desc = ev.String()
	}
	return fmt.Sprintf("%04d %s %s len=%d", e.Seq, e.Origin, desc, e.Len)
}

// Text renders events one per line, each line newline-terminated.
func Text(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString(e.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// Lengther reports the current length of a sequence at notification time.
type Lengther interface {
	Len() int
}

// Recorder subscribes to notifiers and stamps every notification they
// deliver with the next seq of its clock.
type Recorder struct {
	runID  string
	clock  *Clock
	events []Event
	subs   []*binding.Subscription
}

// NewRecorder creates a recorder for runID. A nil clock starts at 0.
func NewRecorder(runID string, clock *Clock) *Recorder {
	if clock == nil {
		clock = NewClock()
	}
	return &Recorder{runID: runID, clock: clock}
}

// Attach records every notification of n under origin. The length
// recorded with each event is seq.Len() at delivery.
func (r *Recorder) Attach(origin string, n binding.Notifier, seq Lengther) {
	sub := n.Subscribe(func(ev binding.ListChanged) {
		r.events = append(r.events, Event{
			Seq:      r.clock.Next(),
			RunID:    r.runID,
			Origin:   origin,
			Kind:     ev.Kind.String(),
			Index:    ev.Index,
			OldIndex: ev.OldIndex,
			Field:    ev.Field,
			Len:      seq.Len(),
		})
	})
	r.subs = append(r.subs, sub)
}

// Detach unsubscribes from every attached notifier.
func (r *Recorder) Detach() {
	for _, s := range r.subs {
		s.Unsubscribe()
	}
	r.subs = nil
}

// RunID returns the run the recorder stamps events with.
func (r *Recorder) RunID() string { return r.runID }

// Events returns a copy of the recorded events in seq order.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of one origin.
func (r *Recorder) Filter(origin string) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Origin == origin {
			out = append(out, e)
		}
	}
	return out
}

// LastSeq returns the seq of the most recent event, or 0.
func (r *Recorder) LastSeq() int64 { return r.clock.Current() }
