package menu

import "cogentcore.org/core/base/ordmap"

// MergeParameters merges the source lists into dst. The destination's own
// parameters are kept; a source parameter is inserted only when its name is
// not present yet, so the first occurrence wins and later defaults for the
// same name are dropped. The result keeps insertion order. Nil sources are
// ignored. Returns the total cost of the merged list.
func MergeParameters(sources []*Parameters, dst *Parameters) int {
	merged := ordmap.New[string, Parameter]()
	for _, p := range dst.List {
		if _, ok := merged.ValueByKeyTry(p.Name); !ok {
			merged.Add(p.Name, p)
		}
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, p := range src.List {
			if _, ok := merged.ValueByKeyTry(p.Name); ok {
				continue
			}
			merged.Add(p.Name, p)
		}
	}
	dst.List = merged.Values()
	return dst.Cost()
}

// MergeMenus appends to dst a copy of every source control whose name dst
// does not have yet. Existing controls stay in place. Nil sources are
// ignored. Returns the number of controls added.
func MergeMenus(sources []*Menu, dst *Menu) int {
	seen := make(map[string]bool, len(dst.Controls))
	for _, c := range dst.Controls {
		seen[c.Name] = true
	}
	added := 0
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, c := range src.Controls {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			dst.Controls = append(dst.Controls, c.Clone())
			added++
		}
	}
	return added
}
