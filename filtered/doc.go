// Package filtered provides a live filtered view over a
// [binding.Sequence].
//
// A [List] exposes only the elements of its source that currently satisfy
// one criterion, stays synchronized as the source is mutated, and
// announces its own changes in view positions so that a subscriber can
// redraw only what changed.
//
// # Structure
//
// The view keeps an index of (key, base) entries, one per visible element,
// where base is the element's current position in the source and key is
// the value extracted for filtering. Three parts cooperate:
//
//   - the index itself, a dense slice repaired with linear passes
//   - the filter engine: ApplyFilter, ApplyFilterWith, RemoveFilter and
//     Refresh rebuild the index from a full scan and announce Reset
//   - the relay: a subscriber on the source that repairs the index for
//     each source change and republishes it in view positions
//
// # Relaying source changes
//
// While filtered:
//
//	item added at p     entries at or after p shift up; a matching element
//	                    is appended to the end of the index and announced
//	                    as added at that view position
//	item changed at p   the visible entry for p, if any, refreshes its key
//	                    and is announced as changed; membership is not
//	                    re-evaluated
//	item deleted at p   the entry for p, if any, is dropped and announced
//	                    as deleted; entries after p shift down
//	field descriptor    republished unchanged
//	anything else       full rebuild, announced as Reset
//
// Unfiltered, every source change is republished unchanged.
//
// Not re-evaluating membership on change keeps an element that is being
// edited from vanishing under the editor. The consequence is that an index
// maintained incrementally can differ from a fresh rebuild at positions
// changed in place; [List.CheckIndex] tolerates exactly those positions.
//
// # Field names
//
// [List.ApplyFilter] resolves a field name once, through
// [binding.ResolveField]. A name that does not resolve is not an error:
// the view filters on the whole element instead. Prefer
// [List.ApplyFilterWith] with a typed extractor where type safety matters.
//
// # Errors
//
// Operations the source cannot perform fail with an *[UnsupportedError]
// matching [ErrUnsupported]. There is no fallback: Find on a source without
// search fails rather than scanning. A corrupted index is an
// *[InvariantError]: accessors return it, and the relay, which has no
// caller to return to, logs it and panics.
//
// # Threading
//
// The view performs no locking. It, its source and every subscriber belong
// to one logical thread of control. All repairs complete before the
// triggering call returns. Mutating the view from inside one of its own
// notification handlers fails with [binding.ErrReentrantMutation].
package filtered
