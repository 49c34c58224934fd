package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the --config file is unified with the
built-in schema and its defaults.

Examples:
  airdraw config
  airdraw config --config ./airdraw.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(cfg, func(w io.Writer) {
				journal := cfg.Journal
				if journal == "" {
					journal = "(in memory)"
				}
				fmt.Fprintf(w, "device_name:      %s\n", cfg.DeviceName)
				fmt.Fprintf(w, "journal:          %s\n", journal)
				fmt.Fprintf(w, "drawing_distance: %g\n", cfg.DrawingDistance)
				fmt.Fprintf(w, "stroke_width:     %g\n", cfg.StrokeWidth)
				fmt.Fprintf(w, "radial_segments:  %d\n", cfg.RadialSegments)
				fmt.Fprintf(w, "default_color:    %s\n", cfg.DefaultColor)
			})
		},
	}
}
