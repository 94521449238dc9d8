package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/dnd5e"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/settings"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/world"
)

func New() *cobra.Command {
	// Built-in rulesets register here; external ones call
	// system.RegisterSystemHandler from their own init path.
	system.RegisterSystemHandler(dnd5e.SystemID, dnd5e.New())

	cmd := &cobra.Command{
		Use:   "inspect-statblock",
		Short: base.Wrap80("Inspect actor statblocks with per-element visibility control."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addInspect(topLevel)
	addToggle(topLevel)
	addHide(topLevel)
	addShow(topLevel)
	addSystems(topLevel)
	addLoad(topLevel)
	addUI(topLevel)
	addVersion(topLevel)
}

// env is the shared persistence wiring every command loads before running.
type env struct {
	cfg   settings.Settings
	world world.Persistence
	flags *visibility.Store
}

func loadEnv() (*env, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		world: world.Load(cfg.BasePath()),
		flags: visibility.NewStore(filepath.Join(cfg.BasePath(), "flags")),
	}, nil
}
