package filtered

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erikrandall/csla/binding"
)

type item struct {
	Name string `json:"name"`
}

func items(names ...string) []item {
	out := make([]item, len(names))
	for i, n := range names {
		out[i] = item{Name: n}
	}
	return out
}

func names[T any](v *List[T], name func(T) string) []string {
	var out []string
	for _, x := range v.All() {
		out = append(out, name(x))
	}
	return out
}

func values[T any](v *List[T]) []T {
	var out []T
	for _, x := range v.All() {
		out = append(out, x)
	}
	return out
}

func itemNames(v *List[item]) []string {
	return names(v, func(x item) string { return x.Name })
}

func bases[T any](v *List[T]) []int {
	var out []int
	for _, e := range v.Entries() {
		out = append(out, e.Base)
	}
	return out
}

func events[T any](v *List[T]) *[]binding.ListChanged {
	var got []binding.ListChanged
	v.Subscribe(func(ev binding.ListChanged) { got = append(got, ev) })
	return &got
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// plain is a Sequence with no optional capabilities.
type plain[T any] struct{ items []T }

func (p *plain[T]) Len() int { return len(p.items) }

func (p *plain[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(p.items) {
		var zero T
		return zero, binding.ErrIndexOutOfRange
	}
	return p.items[i], nil
}

func (p *plain[T]) Set(i int, v T) error {
	if i < 0 || i >= len(p.items) {
		return binding.ErrIndexOutOfRange
	}
	p.items[i] = v
	return nil
}

func (p *plain[T]) Append(v T) (int, error) {
	p.items = append(p.items, v)
	return len(p.items) - 1, nil
}

func (p *plain[T]) Insert(i int, v T) error {
	if i < 0 || i > len(p.items) {
		return binding.ErrIndexOutOfRange
	}
	p.items = slices.Insert(p.items, i, v)
	return nil
}

func (p *plain[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(p.items) {
		return binding.ErrIndexOutOfRange
	}
	p.items = slices.Delete(p.items, i, i+1)
	return nil
}

func (p *plain[T]) All() iter.Seq2[int, T] { return slices.All(p.items) }

func TestList_PrefixScenario(t *testing.T) {
	src := binding.NewList(items("A", "B", "C", "D"))
	v := New[item](src, WithFilterProvider(AnyPrefix))
	got := events(v)

	require.NoError(t, v.ApplyFilter("name", []string{"a", "c"}))
	assert.Equal(t, []string{"A", "C"}, itemNames(v))
	assert.Equal(t, []int{0, 2}, bases(v))

	_, err := src.Append(item{Name: "Cx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "Cx"}, itemNames(v))

	require.NoError(t, src.RemoveAt(0))
	assert.Equal(t, []string{"C", "Cx"}, itemNames(v))
	assert.Equal(t, []int{1, 3}, bases(v))

	assert.Equal(t, []binding.ListChanged{
		binding.ResetEvent(),
		binding.AddedAt(2),
		binding.DeletedAt(0),
	}, *got)
	require.NoError(t, v.CheckIndex())
}

func TestList_RoundTrip(t *testing.T) {
	src := binding.NewList(items("apple", "Banana", "avocado", "cherry", "Apricot"))
	v := New[item](src)

	require.NoError(t, v.ApplyFilter("Name", "a"))
	assert.Equal(t, []string{"apple", "avocado", "Apricot"}, itemNames(v))

	v.RemoveFilter()
	assert.Equal(t, []string{"apple", "Banana", "avocado", "cherry", "Apricot"}, itemNames(v))
	assert.Nil(t, v.Entries())
}

func TestList_RemoveFilter_WhenUnfiltered(t *testing.T) {
	src := binding.NewList(items("a", "b", "c"))
	v := New[item](src)
	got := events(v)

	v.RemoveFilter()

	assert.False(t, v.IsFiltered())
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []binding.ListChanged{binding.ResetEvent()}, *got)
}

func TestList_UnresolvableField_FiltersWholeElement(t *testing.T) {
	words := []string{"apple", "Banana", "avocado", "cherry"}

	byWhole := New[string](binding.NewList(words))
	require.NoError(t, byWhole.ApplyFilter("", "a"))

	byUnknown := New[string](binding.NewList(words))
	require.NoError(t, byUnknown.ApplyFilter("no_such_field", "a"))

	assert.Equal(t, byWhole.Entries(), byUnknown.Entries())
	assert.Equal(t, []Entry{{Key: "apple", Base: 0}, {Key: "avocado", Base: 2}}, byUnknown.Entries())

	field, ok := byUnknown.ActiveFilterField()
	assert.False(t, ok)
	assert.Empty(t, field)
	assert.True(t, byUnknown.IsFiltered())
	assert.Equal(t, "a", byUnknown.FilterValue())
}

func TestList_ActiveFilterField(t *testing.T) {
	v := New[item](binding.NewList(items("a")))
	_, ok := v.ActiveFilterField()
	assert.False(t, ok)

	require.NoError(t, v.ApplyFilter("NAME", "a"))
	field, ok := v.ActiveFilterField()
	assert.True(t, ok)
	assert.Equal(t, "Name", field)
}

func TestList_ApplyFilter_ReplacesCriterion(t *testing.T) {
	src := binding.NewList(items("ant", "bee", "bat"))
	v := New[item](src)
	got := events(v)

	require.NoError(t, v.ApplyFilter("name", "a"))
	require.NoError(t, v.ApplyFilter("name", "b"))

	assert.Equal(t, []string{"bee", "bat"}, itemNames(v))
	assert.Equal(t, []binding.ListChanged{binding.ResetEvent(), binding.ResetEvent()}, *got)
}

func TestList_ApplyFilterWith_TypedExtractor(t *testing.T) {
	src := binding.NewList(items("ant", "bee", "bat"))
	v := New[item](src)

	require.NoError(t, v.ApplyFilterWith(Criterion[item]{
		Field:     "length",
		Extract:   func(x item) any { return len(x.Name) },
		Predicate: Equals,
		Value:     3,
	}))
	assert.Equal(t, 3, v.Len())

	field, ok := v.ActiveFilterField()
	assert.True(t, ok)
	assert.Equal(t, "length", field)
	assert.Equal(t, []Entry{{3, 0}, {3, 1}, {3, 2}}, v.Entries())
}

func TestList_ApplyFilterFunc(t *testing.T) {
	v := New[int](binding.NewList([]int{5, 12, 7, 30}))

	require.NoError(t, v.ApplyFilterFunc(func(key, filter any) bool {
		return key.(int) > filter.(int)
	}, 6))
	assert.Equal(t, []int{12, 7, 30}, values(v))
}
