package commands

import (
	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/printers"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/settings"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
)

func addSystems(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "systems",
		Short: "list registered ruleset handlers",
		Example: `
inspect-statblock systems
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Systems(cfg.ActiveSystem(), system.GetSystemRegistry().SystemIDs())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
