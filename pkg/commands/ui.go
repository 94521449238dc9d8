package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/commands/options"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/session"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	ao := &options.ActorOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the live inspection view",
		Example: `
inspect-statblock ui --actor goblin-1
inspect-statblock ui --token t42
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return ao.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			s := &session.Session{
				Registry:   system.GetSystemRegistry(),
				Resolver:   e.world,
				Flags:      e.flags,
				Config:     e.cfg,
				ActorID:    ao.Actor,
				TokenID:    ao.Token,
				Privileged: true,
			}
			return tui.Run(context.Background(), s, e.cfg.Redaction())
		},
	}

	options.AddActorArgs(cmd, ao)

	topLevel.AddCommand(cmd)
}
