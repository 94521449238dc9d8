// Package dnd5e is the reference ruleset adapter. It implements the full
// capability set: section definitions, ability order, authoritative key
// enumeration, per-section children, and default-initialization inputs.
package dnd5e

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
)

// SystemID is the ruleset identifier this handler registers under.
const SystemID = "dnd5e"

const (
	SectionHeader         = "header"
	SectionAbilities      = "abilities"
	SectionDefenses       = "defenses"
	SectionPassiveFeature = "passive-features"
	SectionActiveFeature  = "active-features"
	SectionEffects        = "effects"
)

const (
	CategoryResistances         = "resistances"
	CategoryImmunities          = "immunities"
	CategoryVulnerabilities     = "vulnerabilities"
	CategoryConditionImmunities = "condition-immunities"
)

var abilityOrder = []string{"str", "dex", "con", "int", "wis", "cha"}

var categoryLabels = map[string]string{
	CategoryResistances:         "Resistances",
	CategoryImmunities:          "Immunities",
	CategoryVulnerabilities:     "Vulnerabilities",
	CategoryConditionImmunities: "Condition Immunities",
}

// categoryOrder fixes display order; map iteration must not leak into the
// snapshot.
var categoryOrder = []string{
	CategoryResistances,
	CategoryImmunities,
	CategoryVulnerabilities,
	CategoryConditionImmunities,
}

// Handler adapts dnd5e actor records.
type Handler struct{}

// New returns the dnd5e handler.
func New() *Handler { return &Handler{} }

// StandardizedActorData builds the snapshot. Hidden elements are annotated
// for privileged viewers and withheld for everyone else; a hidden name is
// replaced by the redaction placeholder so the real value never leaves the
// handler.
func (h *Handler) StandardizedActorData(ctx context.Context, req system.Request) (*statblock.Statblock, error) {
	if req.Actor == nil {
		return nil, fmt.Errorf("dnd5e: no actor provided")
	}
	sd, err := decodeSystem(req.Actor)
	if err != nil {
		return nil, err
	}

	redaction := req.Redaction
	if redaction == "" {
		redaction = statblock.Redacted
	}

	sb := &statblock.Statblock{
		System:   SystemID,
		ActorID:  req.Actor.ID,
		Title:    req.Actor.Name,
		Portrait: req.Actor.Img,
	}
	if req.Token != nil && req.Token.Name != "" {
		sb.Title = req.Token.Name
	}

	if req.Hidden.Hidden(statblock.HeaderKey("name")) {
		if req.Privileged {
			sb.TitleHidden = true
		} else {
			sb.Title = redaction
		}
	}
	if req.Hidden.Hidden(statblock.HeaderKey("portrait")) && !req.Privileged {
		sb.Portrait = ""
	}

	appendSection := func(sec statblock.Section) {
		hidden := req.Hidden.Hidden(sec.Key)
		if hidden && !req.Privileged {
			return
		}
		sec.Hidden = hidden
		if len(sec.Rows) > 0 || len(sec.Categories) > 0 {
			sb.Sections = append(sb.Sections, sec)
		}
	}

	row := func(key statblock.Key, label, value string) (statblock.Row, bool) {
		hidden := req.Hidden.Hidden(key)
		if hidden && !req.Privileged {
			return statblock.Row{}, false
		}
		return statblock.Row{Key: key, Label: label, Value: value, Hidden: hidden}, true
	}

	// Header rows: armor class and hit points ride along with the title.
	header := statblock.Section{ID: SectionHeader, Label: "Header"}
	if sd.Attributes.AC.Value > 0 {
		if r, ok := row(statblock.HeaderKey("ac"), "AC", fmt.Sprintf("%d", sd.Attributes.AC.Value)); ok {
			header.Rows = append(header.Rows, r)
		}
	}
	if sd.Attributes.HP.Max > 0 {
		if r, ok := row(statblock.HeaderKey("hp"), "HP", fmt.Sprintf("%d / %d", sd.Attributes.HP.Value, sd.Attributes.HP.Max)); ok {
			header.Rows = append(header.Rows, r)
		}
	}
	if sd.Attributes.Speed != "" {
		if r, ok := row(statblock.HeaderKey("speed"), "Speed", sd.Attributes.Speed); ok {
			header.Rows = append(header.Rows, r)
		}
	}
	if sd.Attributes.Senses != "" {
		if r, ok := row(statblock.HeaderKey("senses"), "Senses", sd.Attributes.Senses); ok {
			header.Rows = append(header.Rows, r)
		}
	}
	if len(header.Rows) > 0 {
		sb.Sections = append(sb.Sections, header)
	}

	// Abilities.
	abilities := statblock.Section{
		ID:    SectionAbilities,
		Label: "Abilities",
		Key:   statblock.SectionKey(SectionAbilities),
	}
	for _, id := range abilityOrder {
		ab, ok := sd.Abilities[id]
		if !ok {
			continue
		}
		if r, ok := row(statblock.AbilityKey(id), strings.ToUpper(id), formatAbility(ab.Value)); ok {
			abilities.Rows = append(abilities.Rows, r)
		}
	}
	appendSection(abilities)

	// Defenses.
	defenses := statblock.Section{
		ID:    SectionDefenses,
		Label: "Defenses",
		Key:   statblock.SectionKey(SectionDefenses),
	}
	entries := sd.categoryEntries()
	for _, category := range categoryOrder {
		values := entries[category]
		if len(values) == 0 {
			continue
		}
		catKey := statblock.DefCategoryKey(category)
		catHidden := req.Hidden.Hidden(catKey)
		if catHidden && !req.Privileged {
			continue
		}
		cat := statblock.Category{
			ID:     category,
			Label:  categoryLabels[category],
			Key:    catKey,
			Hidden: catHidden,
		}
		for _, v := range values {
			tagKey := statblock.DefTagKey(category, v)
			tagHidden := req.Hidden.Hidden(tagKey)
			if tagHidden && !req.Privileged {
				continue
			}
			cat.Tags = append(cat.Tags, statblock.Tag{Key: tagKey, Label: v, Hidden: tagHidden})
		}
		if len(cat.Tags) > 0 {
			defenses.Categories = append(defenses.Categories, cat)
		}
	}
	appendSection(defenses)

	// Passive features, active features, effects.
	passive := statblock.Section{
		ID:    SectionPassiveFeature,
		Label: "Features",
		Key:   statblock.SectionKey(SectionPassiveFeature),
	}
	active := statblock.Section{
		ID:    SectionActiveFeature,
		Label: "Actions",
		Key:   statblock.SectionKey(SectionActiveFeature),
	}
	for _, it := range req.Actor.Items {
		if it.Active() {
			if r, ok := row(statblock.ActiveFeatureKey(it.ID), it.Name, strings.Join(it.Activities, ", ")); ok {
				active.Rows = append(active.Rows, r)
			}
		} else {
			if r, ok := row(statblock.FeatureKey(it.ID), it.Name, ""); ok {
				passive.Rows = append(passive.Rows, r)
			}
		}
	}
	appendSection(passive)
	appendSection(active)

	effects := statblock.Section{
		ID:    SectionEffects,
		Label: "Active Effects",
		Key:   statblock.SectionKey(SectionEffects),
	}
	for _, e := range req.Actor.Effects {
		if e.Disabled {
			continue
		}
		if r, ok := row(statblock.EffectKey(e.ID), e.Name, ""); ok {
			effects.Rows = append(effects.Rows, r)
		}
	}
	appendSection(effects)

	return sb, nil
}

// SectionDefinitions declares the dnd5e toggle groups.
func (h *Handler) SectionDefinitions() []statblock.SectionDefinition {
	return []statblock.SectionDefinition{
		{ID: SectionAbilities, Type: statblock.SectionGroup, KeyPattern: "ability-*", DefaultSettingKey: "show.abilities"},
		{ID: SectionDefenses, Type: statblock.SectionSingle, DefaultSettingKey: "show.defenses"},
		{ID: SectionPassiveFeature, Type: statblock.SectionSingle, KeyPattern: "feature-*", DefaultSettingKey: "show.passive-features"},
		{ID: SectionActiveFeature, Type: statblock.SectionSingle, KeyPattern: "active-feature-*", DefaultSettingKey: "show.active-features"},
		{ID: SectionEffects, Type: statblock.SectionSingle, KeyPattern: "effect-*", DefaultSettingKey: "show.effects"},
	}
}

// DefaultAbilityKeys returns the six ability keys in display order.
func (h *Handler) DefaultAbilityKeys() []statblock.Key {
	out := make([]statblock.Key, len(abilityOrder))
	for i, id := range abilityOrder {
		out[i] = statblock.AbilityKey(id)
	}
	return out
}

// AllToggleableKeys is the authoritative enumeration. It shares the key
// generators with the default-initialization pass so both paths derive the
// same set for the same actor state.
func (h *Handler) AllToggleableKeys(a *actor.Actor, sb *statblock.Statblock) []statblock.Key {
	keys := []statblock.Key{statblock.HeaderKey("name"), statblock.HeaderKey("portrait")}
	if sb != nil {
		if hdr := sb.Section(SectionHeader); hdr != nil {
			for _, r := range hdr.Rows {
				keys = append(keys, r.Key)
			}
		}
	}
	for _, def := range h.SectionDefinitions() {
		keys = append(keys, statblock.SectionKey(def.ID))
	}
	keys = append(keys, h.DefaultAbilityKeys()...)

	if a != nil {
		keys = append(keys, visibility.FeatureKeys(a.Items)...)
		keys = append(keys, visibility.ActiveFeatureKeys(a.Items)...)
		keys = append(keys, visibility.EffectKeys(a.Effects)...)

		if sd, err := decodeSystem(a); err == nil {
			entries := sd.categoryEntries()
			for _, category := range categoryOrder {
				if len(entries[category]) == 0 {
					continue
				}
				keys = append(keys, statblock.DefCategoryKey(category))
				keys = append(keys, visibility.DefenseTagKeys(category, entries[category])...)
			}
		}
	}
	return keys
}

// SectionItemKeys returns the children of one section.
func (h *Handler) SectionItemKeys(sectionID string, a *actor.Actor) []statblock.Key {
	if a == nil {
		return nil
	}
	switch sectionID {
	case SectionPassiveFeature:
		return visibility.FeatureKeys(a.Items)
	case SectionActiveFeature:
		return visibility.ActiveFeatureKeys(a.Items)
	case SectionEffects:
		return visibility.EffectKeys(a.Effects)
	case SectionAbilities:
		return h.DefaultAbilityKeys()
	}
	return nil
}

// DefaultInitInputs assembles everything the default-initialization pass
// needs from the raw actor record, without touching the snapshot pipeline.
func (h *Handler) DefaultInitInputs(a *actor.Actor) visibility.InitInputs {
	in := visibility.InitInputs{
		Sections:    h.SectionDefinitions(),
		AbilityKeys: h.DefaultAbilityKeys(),
		CategorySettings: map[string]string{
			CategoryResistances:         "show.resistances",
			CategoryImmunities:          "show.immunities",
			CategoryVulnerabilities:     "show.vulnerabilities",
			CategoryConditionImmunities: "show.condition-immunities",
		},
		LegacyDefensesKey: "show.defenses",
	}
	if a == nil {
		return in
	}
	in.Items = a.Items
	in.Effects = a.Effects
	if sd, err := decodeSystem(a); err == nil {
		in.DefenseTags = sd.categoryEntries()
	}
	return in
}

func formatAbility(v int) string {
	mod := int(math.Floor(float64(v-10) / 2))
	return fmt.Sprintf("%d (%+d)", v, mod)
}
