package filtered

import (
	"fmt"
	"slices"
)

// entry is one element of the view index: the cached key extracted when the
// entry was created or last changed, and the element's current position in
// the source.
type entry struct {
	key  any
	base int
}

// Entry is the exported form of an index entry, returned by Entries.
type Entry struct {
	Key  any
	Base int
}

// viewIndex maps view positions to source positions.
//
// INVARIANTS (while filtered):
//   - every base is in [0, source length)
//   - no two entries share a base
//   - base always equals the current source position of the element that
//     produced the entry; structural repairs shift bases eagerly
type viewIndex struct {
	entries []entry

	// touched holds source positions changed in place since the last
	// rebuild. Membership of those positions is allowed to disagree with a
	// fresh rebuild; see CheckIndex.
	touched []int
}

func (x *viewIndex) len() int { return len(x.entries) }

func (x *viewIndex) reset(entries []entry) {
	x.entries = entries
	x.touched = nil
}

// find returns the view position of the entry with the given base, or -1.
func (x *viewIndex) find(base int) int {
	for i, e := range x.entries {
		if e.base == base {
			return i
		}
	}
	return -1
}

// insertAt makes room for an element inserted into the source at p.
func (x *viewIndex) insertAt(p int) {
	for i := range x.entries {
		if x.entries[i].base >= p {
			x.entries[i].base++
		}
	}
	for i := range x.touched {
		if x.touched[i] >= p {
			x.touched[i]++
		}
	}
}

// deleteAt drops the entry for source position p, if any, and closes the
// gap. It returns the former view position of the dropped entry, or -1.
func (x *viewIndex) deleteAt(p int) int {
	pos := x.find(p)
	if pos >= 0 {
		x.entries = slices.Delete(x.entries, pos, pos+1)
	}
	for i := range x.entries {
		if x.entries[i].base > p {
			x.entries[i].base--
		}
	}
	x.touched = slices.DeleteFunc(x.touched, func(t int) bool { return t == p })
	for i := range x.touched {
		if x.touched[i] > p {
			x.touched[i]--
		}
	}
	return pos
}

func (x *viewIndex) touch(p int) {
	if !slices.Contains(x.touched, p) {
		x.touched = append(x.touched, p)
	}
}

// validate checks bounds and uniqueness against a source of length n.
func (x *viewIndex) validate(n int) error {
	seen := make(map[int]int, len(x.entries))
	for i, e := range x.entries {
		if e.base < 0 || e.base >= n {
			return fmt.Errorf("entry %d has base %d outside [0, %d)", i, e.base, n)
		}
		if prev, dup := seen[e.base]; dup {
			return fmt.Errorf("entries %d and %d share base %d", prev, i, e.base)
		}
		seen[e.base] = i
	}
	return nil
}

func (x *viewIndex) snapshot() []Entry {
	out := make([]Entry, len(x.entries))
	for i, e := range x.entries {
		out[i] = Entry{Key: e.key, Base: e.base}
	}
	return out
}
