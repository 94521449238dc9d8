// Package toggle implements the single/group toggle operation. Section and
// defense-category keys fan out to their children under the majority rule;
// everything else flips one flag.
package toggle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/printers"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/session"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

type Toggle struct {
	Registry *system.Registry
	Resolver actor.Resolver
	Flags    session.FlagStore
	Config   session.Config

	ActorID string
	TokenID string
	Key     string
	Quiet   bool
}

func (t *Toggle) Do(ctx context.Context) error {
	if t.Key == "" {
		return errors.New("can not toggle, no element key")
	}

	s := &session.Session{
		Registry:   t.Registry,
		Resolver:   t.Resolver,
		Flags:      t.Flags,
		Config:     t.Config,
		ActorID:    t.ActorID,
		TokenID:    t.TokenID,
		Privileged: true,
		Notify:     func(msg string) { fmt.Println(msg) },
	}
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	if err := s.Toggle(ctx, statblock.ParseKey(t.Key)); err != nil {
		return err
	}

	if !t.Quiet {
		pp := printers.PrettyPrint{ShowKeys: true}
		pp.Statblock(s.Snapshot())
	}
	return nil
}
