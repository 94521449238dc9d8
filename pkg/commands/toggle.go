package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/commands/options"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/runner/toggle"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

func addToggle(topLevel *cobra.Command) {
	ao := &options.ActorOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "toggle <key>",
		Short: "flip the visibility of one element",
		Long: `Flip the visibility of a single statblock element, addressed by its
toggle key (run inspect --keys to see them). Section and defense-category
keys toggle the whole group by majority: if any child is visible the group
hides, otherwise it shows.`,
		Example: `
inspect-statblock toggle header-name --actor goblin-1
inspect-statblock toggle section-abilities --actor goblin-1
inspect-statblock toggle def-tag-resistances-fire --token t42
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one element key is required")
			}
			return ao.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			t := toggle.Toggle{
				Registry: system.GetSystemRegistry(),
				Resolver: e.world,
				Flags:    e.flags,
				Config:   e.cfg,
				ActorID:  ao.Actor,
				TokenID:  ao.Token,
				Key:      args[0],
				Quiet:    oo.Quiet,
			}
			return oo.HandleError(t.Do(context.Background()))
		},
	}

	options.AddActorArgs(cmd, ao)
	options.AddQuietArg(cmd, oo)
	options.AddOutputArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}
