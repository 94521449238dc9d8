// Package inspect implements the one-shot inspection operation: open a
// session, print the snapshot, close.
package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/printers"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/session"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

type Inspect struct {
	Registry *system.Registry
	Resolver actor.Resolver
	Flags    session.FlagStore
	Config   session.Config

	ActorID  string
	TokenID  string
	AsPlayer bool
	ShowKeys bool
}

func (i *Inspect) Do(ctx context.Context) error {
	if i.Resolver == nil || i.Flags == nil {
		return errors.New("can not inspect, no persistence")
	}

	s := &session.Session{
		Registry:   i.Registry,
		Resolver:   i.Resolver,
		Flags:      i.Flags,
		Config:     i.Config,
		ActorID:    i.ActorID,
		TokenID:    i.TokenID,
		Privileged: !i.AsPlayer,
		Notify:     func(msg string) { fmt.Println(msg) },
	}
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	pp := printers.PrettyPrint{ShowKeys: i.ShowKeys && !i.AsPlayer}
	pp.Statblock(s.Snapshot())
	return nil
}
