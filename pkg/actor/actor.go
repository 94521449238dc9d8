// Package actor holds the host-side actor and token records that system
// handlers adapt. The ruleset-specific payload stays raw; only the parts the
// host itself owns (items, effects, identity) are typed here.
package actor

import "encoding/json"

// Actor is one creature or character record as the host stores it.
type Actor struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Img      string          `json:"img,omitempty"`
	SystemID string          `json:"systemId"`
	System   json.RawMessage `json:"system,omitempty"`
	Items    []Item          `json:"items,omitempty"`
	Effects  []Effect        `json:"effects,omitempty"`
}

// Item is an owned item. Items with activities are "active features";
// items without are passive.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

// Active reports whether the item carries at least one activity.
func (i Item) Active() bool { return len(i.Activities) > 0 }

// Effect is an active effect applied to the actor.
type Effect struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Token is one placed instance of a base actor. Several tokens may share
// the same ActorID.
type Token struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	ActorID string `json:"actorId"`
}

// Resolver looks up live records by identifier. A nil token pointer with a
// nil error means the id is unknown; callers treat that as a user-visible
// condition, not a failure.
type Resolver interface {
	Actor(id string) (*Actor, error)
	Token(id string) (*Token, error)
}
