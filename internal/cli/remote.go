package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/widia-io/widia-flip-sub001/internal/autosave"
	"github.com/widia-io/widia-flip-sub001/internal/clients/flipapi"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/pkg/logger"
)

const defaultServer = "http://localhost:8080/api"

type remoteOptions struct {
	server   string
	property string
	timeout  time.Duration
}

// UpdateResult is printed after a remote update.
type UpdateResult struct {
	PropertyID string                   `json:"property_id"`
	Inputs     interface{}              `json:"inputs"`
	Outputs    interface{}              `json:"outputs"`
	Snapshot   *autosave.SnapshotResult `json:"snapshot,omitempty"`
}

// NewRemoteCommand creates the remote command group, which talks to a running server.
func NewRemoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Read and edit analyses on a flip analysis server",
	}

	server := os.Getenv("FLIP_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "API base URL (env FLIP_SERVER)")
	cmd.PersistentFlags().StringVarP(&opts.property, "property", "p", "", "property id")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall request timeout")
	_ = cmd.MarkPersistentFlagRequired("property")

	cmd.AddCommand(newRemoteShowCommand(rootOpts, opts))
	cmd.AddCommand(newRemoteSnapshotCommand(rootOpts, opts))
	cmd.AddCommand(newRemoteHistoryCommand(rootOpts, opts))
	cmd.AddCommand(newRemoteUpdateCashCommand(rootOpts, opts))
	cmd.AddCommand(newRemoteUpdateFinancingCommand(rootOpts, opts))

	return cmd
}

func (o *remoteOptions) connect(rootOpts *RootOptions, cmd *cobra.Command) (*flipapi.Client, zerolog.Logger, context.Context, context.CancelFunc) {
	level := "error"
	if rootOpts.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(logger.Config{Level: level, Pretty: true}, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	return flipapi.NewClient(o.server, log), log, ctx, cancel
}

func parseKindArg(arg string) (domain.AnalysisKind, error) {
	kind, ok := domain.ParseAnalysisKind(arg)
	if !ok {
		return "", NewExitError(ExitCommandError, fmt.Sprintf("unknown analysis kind %q: must be cash or financing", arg))
	}
	return kind, nil
}

// remoteError maps API failures onto exit errors.
func remoteError(err error) error {
	if flipapi.IsPartial(err) {
		return WrapExitError(ExitFailure, "analysis is partial, purchase and sale price are required", err)
	}
	var apiErr *flipapi.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return WrapExitError(ExitCommandError, "server rejected inputs", err)
	}
	return WrapExitError(ExitFailure, "request failed", err)
}

func newRemoteShowCommand(rootOpts *RootOptions, opts *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <cash|financing>",
		Short: "Show the live analysis of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			client, _, ctx, cancel := opts.connect(rootOpts, cmd)
			defer cancel()

			var view interface{}
			if kind == domain.KindCash {
				view, err = client.GetCash(ctx, opts.property)
			} else {
				view, err = client.GetFinancing(ctx, opts.property)
			}
			if err != nil {
				return remoteError(err)
			}
			return newFormatter(rootOpts, cmd).Print(view)
		},
	}
}

func newRemoteSnapshotCommand(rootOpts *RootOptions, opts *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <cash|financing>",
		Short: "Capture a snapshot of the live analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			client, _, ctx, cancel := opts.connect(rootOpts, cmd)
			defer cancel()

			result, err := client.CaptureSnapshot(ctx, opts.property, kind)
			if err != nil {
				return remoteError(err)
			}
			return newFormatter(rootOpts, cmd).Print(result)
		},
	}
}

func newRemoteHistoryCommand(rootOpts *RootOptions, opts *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <cash|financing>",
		Short: "List snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			client, _, ctx, cancel := opts.connect(rootOpts, cmd)
			defer cancel()

			var items interface{}
			if kind == domain.KindCash {
				items, err = client.ListCashSnapshots(ctx, opts.property)
			} else {
				items, err = client.ListFinancingSnapshots(ctx, opts.property)
			}
			if err != nil {
				return remoteError(err)
			}
			return newFormatter(rootOpts, cmd).Print(map[string]interface{}{"items": items})
		},
	}
}

func newRemoteUpdateCashCommand(rootOpts *RootOptions, opts *remoteOptions) *cobra.Command {
	in := &cashOptions{}
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "update-cash",
		Short: "Change cash inputs on the server",
		Long: `Apply the given cash inputs on top of the stored ones and save them.
Flags that are not given keep their stored value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := in.patch(cmd)
			if patch == (domain.CashPatch{}) {
				return NewExitError(ExitCommandError, "no inputs given")
			}
			client, log, ctx, cancel := opts.connect(rootOpts, cmd)
			defer cancel()

			session, err := flipapi.OpenCashSession(ctx, client, opts.property, autosave.Config{}, log)
			if err != nil {
				return remoteError(err)
			}
			defer session.Close()

			session.Edit(patch)
			result, err := commit(ctx, session, snapshot)
			if err != nil {
				return err
			}
			result.PropertyID = opts.property
			return newFormatter(rootOpts, cmd).Print(result)
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "capture a snapshot after saving")
	return cmd
}

func newRemoteUpdateFinancingCommand(rootOpts *RootOptions, opts *remoteOptions) *cobra.Command {
	in := &financingOptions{}
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "update-financing",
		Short: "Change financing inputs on the server",
		Long: `Apply the given financing inputs on top of the stored ones and save them.
Flags that are not given keep their stored value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := in.patch(cmd)
			if patch == (domain.FinancingPatch{}) {
				return NewExitError(ExitCommandError, "no inputs given")
			}
			client, log, ctx, cancel := opts.connect(rootOpts, cmd)
			defer cancel()

			session, err := flipapi.OpenFinancingSession(ctx, client, opts.property, autosave.Config{}, log)
			if err != nil {
				return remoteError(err)
			}
			defer session.Close()

			session.Edit(patch)
			result, err := commit(ctx, session, snapshot)
			if err != nil {
				return err
			}
			result.PropertyID = opts.property
			return newFormatter(rootOpts, cmd).Print(result)
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "capture a snapshot after saving")
	return cmd
}

// commit flushes the session's pending edit and optionally snapshots the saved state.
func commit[I autosave.Inputs, O any](ctx context.Context, session *autosave.Coordinator[I, O], snapshot bool) (*UpdateResult, error) {
	result := &UpdateResult{}
	if snapshot {
		snap, err := session.CaptureSnapshot(ctx)
		if err != nil {
			return nil, remoteError(err)
		}
		result.Snapshot = &snap
	} else if err := session.Flush(ctx); err != nil {
		return nil, remoteError(err)
	}

	result.Inputs = session.Inputs()
	if outputs, ok := session.Outputs(); ok {
		result.Outputs = outputs
	}
	return result, nil
}
