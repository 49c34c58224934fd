package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/status"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Tracking string
	Mapping  string
	Peers    []string
	Anchors  bool
	Provider string
}

// StatusResult is the resolved banner for one session state.
type StatusResult struct {
	Tracking string `json:"tracking"`
	Mapping  string `json:"mapping"`
	Peers    int    `json:"peers"`
	status.Report
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Resolve the session banner for a given state",
		Long: `Resolve the status message and share-map gate for a session state.

Tracking is "normal", "unavailable" or "limited:<reason>" where reason is
initializing, relocalizing, excessive_motion or insufficient_features.
Mapping is not_available, limited, extending or mapped.

Examples:
  airdraw status --tracking normal --peers Bob
  airdraw status --tracking limited:relocalizing --provider Bob --peers Bob
  airdraw status --mapping mapped --peers Bob,Carol --anchors --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tracking, "tracking", "normal", "tracking quality")
	cmd.Flags().StringVar(&opts.Mapping, "mapping", "not_available", "mapping status")
	cmd.Flags().StringSliceVar(&opts.Peers, "peers", nil, "connected peer display names")
	cmd.Flags().BoolVar(&opts.Anchors, "anchors", false, "strokes are present")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "display name of the map provider")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	q, err := model.ParseTrackingQuality(opts.Tracking)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --tracking", err)
	}
	m, err := model.ParseMappingStatus(opts.Mapping)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --mapping", err)
	}

	state := model.SessionState{
		Tracking:   q,
		HasAnchors: opts.Anchors,
		Mapping:    m,
	}
	for i, name := range opts.Peers {
		state.Peers = append(state.Peers, model.NewPeer(fmt.Sprintf("peer-%d", i+1), name))
	}
	if opts.Provider != "" {
		p := model.NewPeer("provider", opts.Provider)
		state.MapProvider = &p
	}

	result := StatusResult{
		Tracking: q.String(),
		Mapping:  m.String(),
		Peers:    state.ConnectedPeerCount(),
		Report:   status.Evaluate(state),
	}
	return opts.formatter(cmd).Success(result, func(w io.Writer) {
		if result.ShowBanner {
			fmt.Fprintf(w, "Banner: %s\n", result.Message)
		} else {
			fmt.Fprintln(w, "Banner: (hidden)")
		}
		fmt.Fprintf(w, "Share map: %s\n", enabledText(result.ExportEnabled))
	})
}

func enabledText(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
