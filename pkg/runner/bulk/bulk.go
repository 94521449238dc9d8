// Package bulk implements the whole-actor hide-all and show-all
// operations.
package bulk

import (
	"context"
	"fmt"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/printers"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/session"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

type Bulk struct {
	Registry *system.Registry
	Resolver actor.Resolver
	Flags    session.FlagStore
	Config   session.Config

	ActorID string
	TokenID string
	Hide    bool
	Quiet   bool
}

func (b *Bulk) Do(ctx context.Context) error {
	s := &session.Session{
		Registry:   b.Registry,
		Resolver:   b.Resolver,
		Flags:      b.Flags,
		Config:     b.Config,
		ActorID:    b.ActorID,
		TokenID:    b.TokenID,
		Privileged: true,
		Notify:     func(msg string) { fmt.Println(msg) },
	}
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	var err error
	if b.Hide {
		err = s.HideAll(ctx)
	} else {
		err = s.ShowAll(ctx)
	}
	if err != nil {
		return err
	}

	if !b.Quiet {
		pp := printers.PrettyPrint{ShowKeys: true}
		pp.Statblock(s.Snapshot())
	}
	return nil
}
