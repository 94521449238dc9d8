package visibility

import (
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

// The generator functions below derive element keys straight from actor
// data, without going through a handler's standardized snapshot. The
// default-initialization pass runs before any inspection view has fetched
// one, so it cannot lean on the handler pipeline. Handlers must enumerate
// the same keys for the same actor state; dnd5e pins that with a parity
// test.

// FeatureKeys returns one key per passive item (no activities).
func FeatureKeys(items []actor.Item) []statblock.Key {
	var out []statblock.Key
	for _, it := range items {
		if !it.Active() {
			out = append(out, statblock.FeatureKey(it.ID))
		}
	}
	return out
}

// ActiveFeatureKeys returns one key per item carrying activities.
func ActiveFeatureKeys(items []actor.Item) []statblock.Key {
	var out []statblock.Key
	for _, it := range items {
		if it.Active() {
			out = append(out, statblock.ActiveFeatureKey(it.ID))
		}
	}
	return out
}

// EffectKeys returns one key per non-disabled active effect.
func EffectKeys(effects []actor.Effect) []statblock.Key {
	var out []statblock.Key
	for _, e := range effects {
		if !e.Disabled {
			out = append(out, statblock.EffectKey(e.ID))
		}
	}
	return out
}

// DefenseTagKeys returns one key per trait value in the category. Values
// are normalized inside DefTagKey, so custom entries like "radiant damage"
// land on def-tag-<category>-radiantdamage.
func DefenseTagKeys(category string, values []string) []statblock.Key {
	var out []statblock.Key
	for _, v := range values {
		if statblock.NormalizeTag(v) == "" {
			continue
		}
		out = append(out, statblock.DefTagKey(category, v))
	}
	return out
}
