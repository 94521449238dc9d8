package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/runner/load"
)

func addLoad(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "load <export.json>",
		Short: "import actors and tokens from a world export",
		Example: `
inspect-statblock load world-export.json
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one export file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			l := load.Load{
				World: e.world,
				Path:  args[0],
			}
			return l.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
