package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Origin   string // optional - filter anchors by origin
}

// JournalEntry is one row of the journal timeline: an anchor or a dropped
// payload.
type JournalEntry struct {
	Seq    int64  `json:"seq"`
	Type   string `json:"type"` // "anchor" or "receive"
	Origin string `json:"origin,omitempty"`
	PeerID string `json:"peer_id,omitempty"`
	Stroke string `json:"stroke,omitempty"` // length=[r, g, b, a]
	Hash   string `json:"hash,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Size   int    `json:"size,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// JournalStats summarizes the journal.
type JournalStats struct {
	Anchors      int `json:"anchors"`
	Local        int `json:"local"`
	Remote       int `json:"remote"`
	Snapshot     int `json:"snapshot"`
	Unrecognized int `json:"unrecognized"`
}

// JournalResult holds the complete journal output.
type JournalResult struct {
	SessionID   string         `json:"session_id,omitempty"`
	MapProvider string         `json:"map_provider,omitempty"`
	MapID       string         `json:"map_id,omitempty"`
	Timeline    []JournalEntry `json:"timeline"`
	Stats       JournalStats   `json:"stats"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show a device journal",
		Long: `Show the strokes and dropped payloads recorded in a device journal.

The timeline interleaves anchors and receive events by sequence number.
Without --db the journal path comes from the config file.
The session header names the current session and, after a snapshot was
adopted, the peer whose map was loaded.

Examples:
  airdraw journal --db ./device.db
  airdraw journal --db ./device.db --origin remote
  airdraw journal --db ./device.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default: journal from --config)")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "filter anchors by origin (local|remote|snapshot)")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	switch model.Origin(opts.Origin) {
	case "", model.OriginLocal, model.OriginRemote, model.OriginSnapshot:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid origin %q", opts.Origin))
	}

	path := opts.Database
	if path == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Journal
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no journal: pass --db or set journal in the config file")
	}

	// Opening would create an empty journal.
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	result, err := buildJournal(ctx, st, model.Origin(opts.Origin))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	return opts.formatter(cmd).Success(result, func(w io.Writer) {
		writeJournalText(w, result)
	})
}

// buildJournal reads every table and merges anchors with receive events.
func buildJournal(ctx context.Context, st *store.Store, origin model.Origin) (JournalResult, error) {
	session, err := st.ReadSession(ctx)
	if err != nil {
		return JournalResult{}, err
	}
	rows, err := st.ReadAnchorRows(ctx)
	if err != nil {
		return JournalResult{}, err
	}
	events, err := st.ReadReceiveEvents(ctx)
	if err != nil {
		return JournalResult{}, err
	}

	result := JournalResult{
		SessionID: session.SessionID,
		MapID:     session.MapID,
		Timeline:  []JournalEntry{},
	}
	if !session.MapProvider.IsZero() {
		result.MapProvider = session.MapProvider.DisplayName
	}

	for _, row := range rows {
		a := row.Anchor
		result.Stats.Anchors++
		switch a.Origin {
		case model.OriginLocal:
			result.Stats.Local++
		case model.OriginRemote:
			result.Stats.Remote++
		case model.OriginSnapshot:
			result.Stats.Snapshot++
		}
		if origin != "" && a.Origin != origin {
			continue
		}
		result.Timeline = append(result.Timeline, JournalEntry{
			Seq:    a.Seq,
			Type:   "anchor",
			Origin: string(a.Origin),
			PeerID: a.PeerID,
			Stroke: codec.StrokeName(a.Stroke.Length, a.Stroke.Color),
			Hash:   row.StrokeHash,
		})
	}

	for _, ev := range events {
		result.Stats.Unrecognized++
		if origin != "" {
			continue
		}
		result.Timeline = append(result.Timeline, JournalEntry{
			Seq:    ev.Seq,
			Type:   "receive",
			PeerID: ev.PeerID,
			Kind:   ev.Kind,
			Size:   ev.Size,
			Detail: ev.Detail,
		})
	}

	sort.SliceStable(result.Timeline, func(i, j int) bool {
		return result.Timeline[i].Seq < result.Timeline[j].Seq
	})
	return result, nil
}

func writeJournalText(w io.Writer, result JournalResult) {
	session := result.SessionID
	if session == "" {
		session = "(none)"
	}
	fmt.Fprintf(w, "Session: %s\n", session)
	if result.MapProvider != "" {
		fmt.Fprintf(w, "Map: %s from %s\n", result.MapID, result.MapProvider)
	}
	fmt.Fprintln(w)

	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No entries.")
	}
	for _, e := range result.Timeline {
		switch e.Type {
		case "anchor":
			from := ""
			if e.PeerID != "" {
				from = " from " + e.PeerID
			}
			fmt.Fprintf(w, "[%d] %-8s %s%s\n", e.Seq, e.Origin, e.Stroke, from)
		default:
			fmt.Fprintf(w, "[%d] dropped  %s payload from %s (%d bytes): %s\n", e.Seq, e.Kind, e.PeerID, e.Size, e.Detail)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Anchors: %d (local %d, remote %d, snapshot %d), dropped payloads: %d\n",
		result.Stats.Anchors, result.Stats.Local, result.Stats.Remote, result.Stats.Snapshot, result.Stats.Unrecognized)
}
