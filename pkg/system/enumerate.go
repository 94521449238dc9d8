package system

import (
	"strings"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

// PassiveFeaturesSection is the conventional id of the section holding
// items without activities. The fallback enumeration asks the handler for
// this section's children when it can.
const PassiveFeaturesSection = "passive-features"

// ToggleableKeys enumerates every element key that currently exists for the
// actor. A handler implementing KeyEnumerator is authoritative; otherwise a
// best-effort fallback is assembled from the other capabilities:
//
//   - each single-type section contributes its own key
//   - the ability group pattern expands through AbilityLister; other group
//     patterns are not generically expandable without handler support and
//     are skipped
//   - each non-disabled active effect contributes a key
//   - passive-feature children come from SectionItemLister when present
//   - defense tags are discovered by walking the already-produced snapshot
//
// The fallback may under-enumerate for partial or legacy handlers.
func ToggleableKeys(h Handler, a *actor.Actor, sb *statblock.Statblock) []statblock.Key {
	if ke, ok := h.(KeyEnumerator); ok {
		return ke.AllToggleableKeys(a, sb)
	}

	var out []statblock.Key
	seen := make(map[string]struct{})
	add := func(keys ...statblock.Key) {
		for _, k := range keys {
			s := k.String()
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, k)
		}
	}

	if sd, ok := h.(SectionDefiner); ok {
		for _, def := range sd.SectionDefinitions() {
			switch def.Type {
			case statblock.SectionSingle:
				add(statblock.SectionKey(def.ID))
			case statblock.SectionGroup:
				if strings.HasPrefix(def.KeyPattern, "ability-") {
					if al, ok := h.(AbilityLister); ok {
						add(al.DefaultAbilityKeys()...)
					}
				}
			}
		}
	}

	if a != nil {
		for _, e := range a.Effects {
			if !e.Disabled {
				add(statblock.EffectKey(e.ID))
			}
		}
		if sl, ok := h.(SectionItemLister); ok {
			add(sl.SectionItemKeys(PassiveFeaturesSection, a)...)
		}
	}

	if sb != nil {
		for _, sec := range sb.Sections {
			for _, c := range sec.Categories {
				if !c.Key.IsZero() {
					add(c.Key)
				}
				for _, t := range c.Tags {
					add(t.Key)
				}
			}
		}
	}

	return out
}
