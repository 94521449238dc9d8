// Package visibility owns the hidden-elements overlay: the persisted
// ElementKey → hidden mapping, the pure reconciliation functions that
// compute new mappings for toggle and bulk operations, and the
// default-initialization pass.
package visibility

import "github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"

// Map is the hidden-elements mapping for one owning entity. true means
// hidden from unprivileged viewers; a missing key means visible. Keys are
// the persisted string encodings so legacy entries survive untouched.
type Map map[string]bool

// Hidden reports whether the given element is hidden. Absent is visible.
func (m Map) Hidden(k statblock.Key) bool {
	return m[k.String()]
}

// Clone returns an independent copy. Mutations always go clone-then-write;
// callers never edit a map another session may still be reading.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Empty reports whether no flag has ever been written. This is the
// default-initialization gate: existence of any key, not deep validation.
func (m Map) Empty() bool { return len(m) == 0 }
