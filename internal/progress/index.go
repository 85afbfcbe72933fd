package progress

import (
	"fmt"
	"sort"
)

// BuildIndex turns a catalog tree into the per-level next-pointer rows.
// Entries are linked in sequence order within their parent; the last entry
// at each level gets an empty next id. Module and section pointers also
// carry the id of their own first child so a cascade entering a fresh
// subtree can prime it without another catalog lookup.
func BuildIndex(modules []ModuleNode) (Index, error) {
	if len(modules) == 0 {
		return Index{}, ErrEmptyTree
	}
	mods := sortedModules(modules)

	var idx Index
	for i, m := range mods {
		if len(m.Sections) == 0 {
			return Index{}, fmt.Errorf("module %s has no sections: %w", m.ID, ErrEmptyTree)
		}
		secs := sortedSections(m.Sections)

		mn := ModuleNext{ModuleID: m.ID, SectionID: secs[0].ID}
		if i+1 < len(mods) {
			mn.NextModuleID = mods[i+1].ID
		}
		idx.Modules = append(idx.Modules, mn)

		for j, s := range secs {
			if len(s.Items) == 0 {
				return Index{}, fmt.Errorf("section %s has no items: %w", s.ID, ErrEmptyTree)
			}
			items := sortedItems(s.Items)

			sn := SectionNext{SectionID: s.ID, SectionItemID: items[0].ID}
			if j+1 < len(secs) {
				sn.NextSectionID = secs[j+1].ID
			}
			idx.Sections = append(idx.Sections, sn)

			for k, it := range items {
				in := SectionItemNext{SectionItemID: it.ID}
				if k+1 < len(items) {
					in.NextSectionItemID = items[k+1].ID
				}
				idx.Items = append(idx.Items, in)
			}
		}
	}
	return idx, nil
}

func sortedModules(in []ModuleNode) []ModuleNode {
	out := append([]ModuleNode(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func sortedSections(in []SectionNode) []SectionNode {
	out := append([]SectionNode(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func sortedItems(in []ItemNode) []ItemNode {
	out := append([]ItemNode(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
