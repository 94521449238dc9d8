package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/commands/options"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/runner/bulk"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

func addHide(topLevel *cobra.Command) {
	topLevel.AddCommand(bulkCommand("hide", "hide every element of a statblock", true))
}

func addShow(topLevel *cobra.Command) {
	topLevel.AddCommand(bulkCommand("show", "reveal every element of a statblock", false))
}

func bulkCommand(use, short string, hide bool) *cobra.Command {
	ao := &options.ActorOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: `
inspect-statblock ` + use + ` --actor goblin-1
inspect-statblock ` + use + ` --token t42 --quiet
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return ao.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			b := bulk.Bulk{
				Registry: system.GetSystemRegistry(),
				Resolver: e.world,
				Flags:    e.flags,
				Config:   e.cfg,
				ActorID:  ao.Actor,
				TokenID:  ao.Token,
				Hide:     hide,
				Quiet:    oo.Quiet,
			}
			return oo.HandleError(b.Do(context.Background()))
		},
	}

	options.AddActorArgs(cmd, ao)
	options.AddQuietArg(cmd, oo)
	options.AddOutputArgs(cmd, oo)

	return cmd
}
