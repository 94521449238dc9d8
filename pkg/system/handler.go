// Package system defines the adapter contract ruleset handlers implement
// and the registry that resolves which handler applies to the active
// ruleset.
package system

import (
	"context"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
)

// Request carries everything a handler needs to produce one standardized
// snapshot. Token is nil for inspections opened directly on a base actor.
// Redaction overrides the placeholder substituted for hidden values; empty
// means the default policy.
type Request struct {
	Actor      *actor.Actor
	Token      *actor.Token
	Hidden     visibility.Map
	Privileged bool
	Redaction  string
}

// Handler converts a native actor record into the standardized inspectable
// structure. Implementations must be side-effect-free on the actor and must
// honor Hidden so unprivileged viewers never receive the true value of a
// hidden field.
//
// Everything beyond StandardizedActorData is an optional capability probed
// with a type assertion; callers fall back to a degraded generic path when
// a capability is absent.
type Handler interface {
	StandardizedActorData(ctx context.Context, req Request) (*statblock.Statblock, error)
}

// SectionDefiner declares the ruleset's top-level toggle groups and which
// configuration key controls each one's default visibility.
type SectionDefiner interface {
	SectionDefinitions() []statblock.SectionDefinition
}

// AbilityLister returns the ruleset's ability keys in display order.
type AbilityLister interface {
	DefaultAbilityKeys() []statblock.Key
}

// KeyEnumerator is the authoritative enumeration of every toggleable key
// for an actor. When implemented it supersedes the generic fallback.
type KeyEnumerator interface {
	AllToggleableKeys(a *actor.Actor, sb *statblock.Statblock) []statblock.Key
}

// SectionItemLister enumerates the children of one section, used for bulk
// toggling that section.
type SectionItemLister interface {
	SectionItemKeys(sectionID string, a *actor.Actor) []statblock.Key
}

// DefaultInitializer supplies the inputs for the default-initialization
// pass, which runs before any snapshot has been fetched and therefore
// cannot lean on the handler pipeline.
type DefaultInitializer interface {
	DefaultInitInputs(a *actor.Actor) visibility.InitInputs
}
