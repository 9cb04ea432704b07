package cli

import (
	"github.com/spf13/cobra"

	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
)

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List regional rate presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(rootOpts, cmd).Print(map[string]interface{}{
				"default": rates.SystemDefault(),
				"presets": rates.Presets(),
			})
		},
	}
}
