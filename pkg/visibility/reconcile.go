package visibility

import "github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"

// Toggle flips one element's flag. An absent entry counts as visible, so
// the first toggle of a fresh key hides it.
func Toggle(m Map, key statblock.Key) Map {
	out := m.Clone()
	ks := key.String()
	out[ks] = !m[ks]
	return out
}

// ToggleGroup applies the majority rule to a header and its children: if
// any child is currently visible the whole group hides; only when every
// child is already hidden does the group show. A single click therefore
// always lands in a deterministic, non-partial state.
//
// The header's own entry is mirrored only when it already exists in the
// map. A group with no children degenerates to a plain toggle of the
// header, hiding it when it had no prior entry.
func ToggleGroup(m Map, header statblock.Key, children []statblock.Key) Map {
	if len(children) == 0 {
		return Toggle(m, header)
	}

	hide := false
	for _, c := range children {
		if !m[c.String()] {
			hide = true
			break
		}
	}

	out := m.Clone()
	for _, c := range children {
		out[c.String()] = hide
	}
	if _, ok := m[header.String()]; ok {
		out[header.String()] = hide
	}
	return out
}

// SetAll builds a brand-new map holding exactly keys, every entry set to
// hidden. Bulk operations replace the persisted map wholesale, which is how
// flags for keys that no longer exist get dropped.
func SetAll(keys []statblock.Key, hidden bool) Map {
	out := make(Map, len(keys))
	for _, k := range keys {
		out[k.String()] = hidden
	}
	return out
}
