package dnd5e

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
)

func syntheticActor(t *testing.T) *actor.Actor {
	t.Helper()
	sys, err := json.Marshal(map[string]any{
		"abilities": map[string]any{
			"str": map[string]int{"value": 18},
			"dex": map[string]int{"value": 12},
			"con": map[string]int{"value": 9},
		},
		"attributes": map[string]any{
			"hp": map[string]int{"value": 30, "max": 45},
			"ac": map[string]int{"value": 15},
		},
		"traits": map[string]any{
			"resistances": map[string]any{
				"value":  []string{"fire", "cold"},
				"custom": "radiant damage",
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal system data: %v", err)
	}
	return &actor.Actor{
		ID:       "a1",
		Name:     "Ancient Owlbear",
		SystemID: SystemID,
		System:   sys,
		Items: []actor.Item{
			{ID: "i1", Name: "Claw", Activities: []string{"attack"}},
			{ID: "i2", Name: "Beak", Activities: []string{"attack"}},
			{ID: "i3", Name: "Keen Sight"},
		},
		Effects: []actor.Effect{
			{ID: "e1", Name: "Bless"},
			{ID: "e2", Name: "Haste"},
		},
	}
}

func keyStrings(keys []statblock.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	sort.Strings(out)
	return out
}

// filterPrefix keeps the keys of one family so the generator and handler
// paths can be compared family by family.
func filterPrefix(keys []string, prefix string) []string {
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func TestGeneratorEnumerationParity(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	enumerated := keyStrings(h.AllToggleableKeys(a, nil))

	cases := []struct {
		prefix    string
		generated []statblock.Key
	}{
		{"feature-", visibility.FeatureKeys(a.Items)},
		{"active-feature-", visibility.ActiveFeatureKeys(a.Items)},
		{"effect-", visibility.EffectKeys(a.Effects)},
		{"def-tag-resistances-", visibility.DefenseTagKeys(CategoryResistances, []string{"fire", "cold", "radiant damage"})},
	}
	for _, tc := range cases {
		want := keyStrings(tc.generated)
		got := filterPrefix(enumerated, tc.prefix)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s keys diverge:\n handler: %v\n generators: %v", tc.prefix, got, want)
		}
	}

	for _, want := range []string{
		"feature-i3",
		"active-feature-i1",
		"active-feature-i2",
		"effect-e1",
		"effect-e2",
		"def-tag-resistances-fire",
		"def-tag-resistances-cold",
		"def-tag-resistances-radiantdamage",
	} {
		found := false
		for _, k := range enumerated {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("enumeration missing %s: %v", want, enumerated)
		}
	}
}

func TestStandardizedActorDataPrivileged(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{
		Actor:      a,
		Hidden:     visibility.Map{"ability-str": true},
		Privileged: true,
	})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}

	if sb.Title != "Ancient Owlbear" {
		t.Fatalf("title: %q", sb.Title)
	}
	abilities := sb.Section(SectionAbilities)
	if abilities == nil {
		t.Fatal("abilities section missing")
	}
	var str *statblock.Row
	for i := range abilities.Rows {
		if abilities.Rows[i].Key.String() == "ability-str" {
			str = &abilities.Rows[i]
		}
	}
	if str == nil {
		t.Fatal("privileged viewers keep hidden rows, annotated")
	}
	if !str.Hidden {
		t.Fatal("hidden row must carry the annotation")
	}
	if str.Value != "18 (+4)" {
		t.Fatalf("ability value: %q", str.Value)
	}
}

func TestStandardizedActorDataRedactsForPlayers(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{
		Actor: a,
		Hidden: visibility.Map{
			"header-name":              true,
			"ability-str":              true,
			"def-tag-resistances-fire": true,
		},
	})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}

	if sb.Title != statblock.Redacted {
		t.Fatalf("real name leaked: %q", sb.Title)
	}
	if strings.Contains(mustJSON(t, sb), "Ancient Owlbear") {
		t.Fatal("real name present somewhere in the snapshot")
	}

	abilities := sb.Section(SectionAbilities)
	for _, r := range abilities.Rows {
		if r.Key.String() == "ability-str" {
			t.Fatal("hidden rows must be withheld from unprivileged viewers")
		}
	}

	defenses := sb.Section(SectionDefenses)
	if defenses == nil {
		t.Fatal("defenses section missing")
	}
	for _, c := range defenses.Categories {
		for _, tag := range c.Tags {
			if tag.Key.String() == "def-tag-resistances-fire" {
				t.Fatal("hidden tag leaked")
			}
		}
	}
}

func TestHiddenSectionWithheldFromPlayers(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{
		Actor:  a,
		Hidden: visibility.Map{"section-effects": true},
	})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if sb.Section(SectionEffects) != nil {
		t.Fatal("hidden section must be withheld")
	}

	// The privileged view keeps it, annotated.
	sb, err = h.StandardizedActorData(context.Background(), system.Request{
		Actor:      a,
		Hidden:     visibility.Map{"section-effects": true},
		Privileged: true,
	})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	sec := sb.Section(SectionEffects)
	if sec == nil || !sec.Hidden {
		t.Fatalf("privileged view must keep the section annotated: %+v", sec)
	}
}

func TestCustomRedactionPlaceholder(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{
		Actor:     a,
		Hidden:    visibility.Map{"header-name": true},
		Redaction: "[unknown]",
	})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if sb.Title != "[unknown]" {
		t.Fatalf("title: %q", sb.Title)
	}
}

func TestCustomTraitNormalization(t *testing.T) {
	a := syntheticActor(t)
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{Actor: a, Privileged: true})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	defenses := sb.Section(SectionDefenses)
	found := false
	for _, c := range defenses.Categories {
		for _, tag := range c.Tags {
			if tag.Key.String() == "def-tag-resistances-radiantdamage" {
				found = true
				if tag.Label != "radiant damage" {
					t.Fatalf("label must keep the original text: %q", tag.Label)
				}
			}
		}
	}
	if !found {
		t.Fatal("custom trait entry missing from snapshot")
	}
}

func TestDisabledEffectsExcluded(t *testing.T) {
	a := syntheticActor(t)
	a.Effects = append(a.Effects, actor.Effect{ID: "e3", Name: "Expired", Disabled: true})
	h := New()

	sb, err := h.StandardizedActorData(context.Background(), system.Request{Actor: a, Privileged: true})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	for _, r := range sb.Section(SectionEffects).Rows {
		if r.Key.String() == "effect-e3" {
			t.Fatal("disabled effect must not appear")
		}
	}

	for _, k := range h.AllToggleableKeys(a, nil) {
		if k.String() == "effect-e3" {
			t.Fatal("disabled effect must not enumerate")
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
