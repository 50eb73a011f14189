package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgarrido/supplysim/internal/entity"
)

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	var day int64

	cmd := &cobra.Command{
		Use:          "events",
		Short:        "Print the audit event log",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, cmd, day)
		},
	}

	cmd.Flags().Int64Var(&day, "day", 0, "only events for this simulated day (0 = all)")

	return cmd
}

func runEvents(opts *RootOptions, cmd *cobra.Command, day int64) error {
	s, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	var events []entity.Event
	if day > 0 {
		events, err = s.EventsForDay(cmd.Context(), day)
	} else {
		events, err = s.Events(cmd.Context())
	}
	if err != nil {
		return WrapExitError(ExitFailure, "read events", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.IsJSON() {
		return formatter.JSON(map[string]any{"events": events})
	}
	for _, ev := range events {
		formatter.Text("day %d  %-24s %s", ev.SimDay, ev.Type, ev.Detail)
	}
	return nil
}
