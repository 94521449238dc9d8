// Package options defines shared flag helpers for CLI commands.
package options

import (
	"errors"

	"github.com/spf13/cobra"
)

// ActorOptions captures the entity selection flags shared by every command
// that opens an inspection.
type ActorOptions struct {
	Actor    string
	Token    string
	AsPlayer bool
}

// AddActorArgs wires actor and token selection flags on the provided command.
func AddActorArgs(cmd *cobra.Command, o *ActorOptions) {
	cmd.Flags().StringVarP(&o.Actor, "actor", "a", "",
		"Specify the actor to inspect.")
	cmd.Flags().StringVarP(&o.Token, "token", "t", "",
		"Specify the token to inspect. Wins over --actor when both are set.")
}

// AddAsPlayerArg registers the unprivileged-view flag.
func AddAsPlayerArg(cmd *cobra.Command, o *ActorOptions) {
	cmd.Flags().BoolVar(&o.AsPlayer, "as-player", false,
		"Render the view a player would see.")
}

// Validate rejects a selection with neither entity set.
func (o *ActorOptions) Validate() error {
	if o.Actor == "" && o.Token == "" {
		return errors.New("one of --actor or --token is required")
	}
	return nil
}
