package dnd5e

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
)

// systemData is the ruleset payload carried on an actor's raw system blob.
type systemData struct {
	Abilities  map[string]abilityData `json:"abilities"`
	Attributes attributesData         `json:"attributes"`
	Traits     traitsData             `json:"traits"`
}

type abilityData struct {
	Value int `json:"value"`
}

type attributesData struct {
	HP     hpData `json:"hp"`
	AC     acData `json:"ac"`
	Speed  string `json:"speed,omitempty"`
	Senses string `json:"senses,omitempty"`
}

type hpData struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

type acData struct {
	Value int `json:"value"`
}

// traitSet holds one defense category: standard values plus a free-text
// custom field with semicolon-separated entries.
type traitSet struct {
	Value  []string `json:"value,omitempty"`
	Custom string   `json:"custom,omitempty"`
}

// Entries returns standard values followed by the parsed custom entries.
func (t traitSet) Entries() []string {
	out := append([]string(nil), t.Value...)
	for _, c := range strings.Split(t.Custom, ";") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

type traitsData struct {
	Resistances         traitSet `json:"resistances"`
	Immunities          traitSet `json:"immunities"`
	Vulnerabilities     traitSet `json:"vulnerabilities"`
	ConditionImmunities traitSet `json:"conditionImmunities"`
}

func decodeSystem(a *actor.Actor) (*systemData, error) {
	sd := &systemData{}
	if len(a.System) == 0 {
		return sd, nil
	}
	if err := json.Unmarshal(a.System, sd); err != nil {
		return nil, fmt.Errorf("dnd5e: decode system data for %s: %w", a.ID, err)
	}
	return sd, nil
}

// categoryEntries maps each defense category to its raw trait entries,
// custom included.
func (sd *systemData) categoryEntries() map[string][]string {
	return map[string][]string{
		CategoryResistances:         sd.Traits.Resistances.Entries(),
		CategoryImmunities:          sd.Traits.Immunities.Entries(),
		CategoryVulnerabilities:     sd.Traits.Vulnerabilities.Entries(),
		CategoryConditionImmunities: sd.Traits.ConditionImmunities.Entries(),
	}
}
