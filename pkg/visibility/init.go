package visibility

import (
	"strings"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

// Defaults reads named boolean settings. Missing settings default to shown.
type Defaults interface {
	Show(settingKey string) bool
}

// InitInputs carries everything the default-initialization pass needs:
// the ruleset's declared sections, its ordered ability keys, the actor's
// current items, effects and defense traits, and the setting keys that gate
// each defense category.
type InitInputs struct {
	Sections    []statblock.SectionDefinition
	AbilityKeys []statblock.Key

	Items       []actor.Item
	Effects     []actor.Effect
	DefenseTags map[string][]string

	// CategorySettings maps a defense category to its per-category
	// visibility setting key.
	CategorySettings map[string]string

	// LegacyDefensesKey is the single legacy setting that, when hidden,
	// force-hides every defense tag regardless of per-category settings.
	LegacyDefensesKey string
}

// Initial computes the first hidden-elements map for an actor from
// configuration. Callers gate it on Map.Empty: an owner with any persisted
// flag is never re-initialized.
func Initial(in InitInputs, cfg Defaults) Map {
	m := Map{}

	for _, def := range in.Sections {
		if def.DefaultSettingKey == "" {
			continue
		}
		hidden := !cfg.Show(def.DefaultSettingKey)
		m[statblock.SectionKey(def.ID).String()] = hidden

		if def.Type == statblock.SectionGroup && patternKind(def.KeyPattern) == statblock.KindAbility {
			for _, k := range in.AbilityKeys {
				m[k.String()] = hidden
			}
		}

		if !hidden {
			continue
		}
		// A hidden section default also force-hides its instance keys.
		switch patternKind(def.KeyPattern) {
		case statblock.KindFeature:
			for _, k := range FeatureKeys(in.Items) {
				m[k.String()] = true
			}
		case statblock.KindActiveFeature:
			for _, k := range ActiveFeatureKeys(in.Items) {
				m[k.String()] = true
			}
		case statblock.KindEffect:
			for _, k := range EffectKeys(in.Effects) {
				m[k.String()] = true
			}
		}
	}

	hideAllDefenses := in.LegacyDefensesKey != "" && !cfg.Show(in.LegacyDefensesKey)
	for category, values := range in.DefenseTags {
		hideCategory := hideAllDefenses
		if key, ok := in.CategorySettings[category]; ok && !cfg.Show(key) {
			hideCategory = true
		}
		if !hideCategory {
			continue
		}
		for _, k := range DefenseTagKeys(category, values) {
			m[k.String()] = true
		}
	}

	return m
}

// patternKind maps a section key pattern like "ability-*" onto the key kind
// its children use.
func patternKind(pattern string) statblock.Kind {
	base := strings.TrimSuffix(pattern, "*")
	base = strings.TrimSuffix(base, "-")
	if base == "" {
		return statblock.KindOpaque
	}
	return statblock.ParseKey(base + "-x").Kind
}
