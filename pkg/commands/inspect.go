package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/commands/options"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/runner/inspect"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

func addInspect(topLevel *cobra.Command) {
	ao := &options.ActorOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "print the statblock for an actor or token",
		Example: `
inspect-statblock inspect --actor goblin-1
inspect-statblock inspect --token t42 --as-player
inspect-statblock inspect --actor goblin-1 --keys
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return ao.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			i := inspect.Inspect{
				Registry: system.GetSystemRegistry(),
				Resolver: e.world,
				Flags:    e.flags,
				Config:   e.cfg,
				ActorID:  ao.Actor,
				TokenID:  ao.Token,
				AsPlayer: ao.AsPlayer,
				ShowKeys: oo.ShowKeys,
			}
			return oo.HandleError(i.Do(context.Background()))
		},
	}

	options.AddActorArgs(cmd, ao)
	options.AddAsPlayerArg(cmd, ao)
	options.AddShowKeysArg(cmd, oo)
	options.AddOutputArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}
