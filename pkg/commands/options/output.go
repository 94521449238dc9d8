package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	JSON     bool
	ShowKeys bool
	Quiet    bool
}

func AddOutputArgs(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVar(&o.JSON, "json", false,
		"Report errors as JSON.")
}

func AddShowKeysArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVar(&o.ShowKeys, "keys", false,
		"Print the toggle key next to each element.")
}

func AddQuietArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVarP(&o.Quiet, "quiet", "q", false,
		"Skip reprinting the statblock after the change.")
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
