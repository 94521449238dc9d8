package visibility

import (
	"testing"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

// fakeDefaults treats every setting as shown unless listed.
type fakeDefaults struct {
	hidden map[string]bool
}

func (f fakeDefaults) Show(key string) bool { return !f.hidden[key] }

func testInputs() InitInputs {
	return InitInputs{
		Sections: []statblock.SectionDefinition{
			{ID: "abilities", Type: statblock.SectionGroup, KeyPattern: "ability-*", DefaultSettingKey: "show.abilities"},
			{ID: "defenses", Type: statblock.SectionSingle, DefaultSettingKey: "show.defenses"},
			{ID: "passive-features", Type: statblock.SectionSingle, KeyPattern: "feature-*", DefaultSettingKey: "show.passive-features"},
			{ID: "active-features", Type: statblock.SectionSingle, KeyPattern: "active-feature-*", DefaultSettingKey: "show.active-features"},
			{ID: "effects", Type: statblock.SectionSingle, KeyPattern: "effect-*", DefaultSettingKey: "show.effects"},
		},
		AbilityKeys: []statblock.Key{
			statblock.AbilityKey("str"),
			statblock.AbilityKey("dex"),
		},
		Items: []actor.Item{
			{ID: "i1", Name: "Claw", Activities: []string{"attack"}},
			{ID: "i2", Name: "Keen Smell"},
		},
		Effects: []actor.Effect{
			{ID: "e1", Name: "Bless"},
			{ID: "e2", Name: "Slow", Disabled: true},
		},
		DefenseTags: map[string][]string{
			"resistances": {"fire", "radiant damage"},
			"immunities":  {"poison"},
		},
		CategorySettings: map[string]string{
			"resistances": "show.resistances",
			"immunities":  "show.immunities",
		},
		LegacyDefensesKey: "show.defenses",
	}
}

func TestInitialAllShownByDefault(t *testing.T) {
	m := Initial(testInputs(), fakeDefaults{})

	for _, k := range []string{"section-abilities", "section-defenses", "ability-str", "ability-dex"} {
		hidden, ok := m[k]
		if !ok {
			t.Fatalf("%s must get an explicit entry", k)
		}
		if hidden {
			t.Fatalf("%s defaults to shown", k)
		}
	}
	if m["def-tag-resistances-fire"] {
		t.Fatal("no force-hide when everything is shown")
	}
}

func TestInitialHiddenSectionForcesInstanceKeys(t *testing.T) {
	m := Initial(testInputs(), fakeDefaults{hidden: map[string]bool{
		"show.passive-features": true,
		"show.active-features":  true,
		"show.effects":          true,
	}})

	if !m["feature-i2"] {
		t.Fatal("passive feature keys must be force-hidden")
	}
	if !m["active-feature-i1"] {
		t.Fatal("active feature keys must be force-hidden")
	}
	if !m["effect-e1"] {
		t.Fatal("effect keys must be force-hidden")
	}
	if m["effect-e2"] {
		t.Fatal("disabled effects get no key")
	}
}

func TestInitialLegacyDefensesMasterFlag(t *testing.T) {
	m := Initial(testInputs(), fakeDefaults{hidden: map[string]bool{
		"show.defenses": true,
	}})

	for _, k := range []string{
		"def-tag-resistances-fire",
		"def-tag-resistances-radiantdamage",
		"def-tag-immunities-poison",
	} {
		if !m[k] {
			t.Fatalf("legacy defenses flag must force-hide %s", k)
		}
	}
}

func TestInitialPerCategorySetting(t *testing.T) {
	m := Initial(testInputs(), fakeDefaults{hidden: map[string]bool{
		"show.resistances": true,
	}})

	if !m["def-tag-resistances-fire"] || !m["def-tag-resistances-radiantdamage"] {
		t.Fatal("resistances tags must be hidden")
	}
	if m["def-tag-immunities-poison"] {
		t.Fatal("immunities tags must stay visible")
	}
}

func TestInitialGating(t *testing.T) {
	// Initialization is gated on Empty: any persisted entry means no-op.
	existing := Map{"effect-old": true}
	if existing.Empty() {
		t.Fatal("non-empty map must not report empty")
	}
	if !(Map{}).Empty() {
		t.Fatal("fresh map reports empty")
	}
}

func TestAbilityGroupFollowsSectionDefault(t *testing.T) {
	m := Initial(testInputs(), fakeDefaults{hidden: map[string]bool{
		"show.abilities": true,
	}})

	if !m["section-abilities"] {
		t.Fatal("section key follows its setting")
	}
	for _, k := range []string{"ability-str", "ability-dex"} {
		if !m[k] {
			t.Fatalf("%s must follow the ability section default", k)
		}
	}
}
