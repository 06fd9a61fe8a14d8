package fit

import "sort"

// FlagSet is the set of node indices marked for manual review. The zero
// value is an empty set.
type FlagSet struct {
	set map[int]struct{}
}

func NewFlagSet(indices ...int) *FlagSet {
	f := &FlagSet{set: make(map[int]struct{}, len(indices))}
	for _, i := range indices {
		f.set[i] = struct{}{}
	}
	return f
}

func (f *FlagSet) Add(i int) {
	if f.set == nil {
		f.set = make(map[int]struct{})
	}
	f.set[i] = struct{}{}
}

func (f *FlagSet) Remove(i int) { delete(f.set, i) }

// Toggle flips the flag on i and returns the new state.
func (f *FlagSet) Toggle(i int) bool {
	if f.Contains(i) {
		f.Remove(i)
		return false
	}
	f.Add(i)
	return true
}

func (f *FlagSet) Contains(i int) bool {
	_, ok := f.set[i]
	return ok
}

func (f *FlagSet) Clear() { clear(f.set) }

func (f *FlagSet) Len() int { return len(f.set) }

// Sorted returns the flagged indices in ascending order.
func (f *FlagSet) Sorted() []int {
	out := make([]int, 0, len(f.set))
	for i := range f.set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
