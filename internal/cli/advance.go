package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgarrido/supplysim/internal/engine"
	"github.com/mgarrido/supplysim/internal/entity"
)

// NewAdvanceCommand creates the advance command.
func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	var seed int64

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the simulation clock by one or more days",
		Long: `Run the day cycle: purchase arrivals, plan resolution, and production
execution, committing phase by phase and appending the audit events for
each day. Prints the events of every day advanced.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvance(rootOpts, cmd, days, seed)
		},
	}

	cmd.Flags().IntVar(&days, "days", 1, "number of days to advance")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed for plan synthesis (0 = time-based)")

	return cmd
}

func runAdvance(opts *RootOptions, cmd *cobra.Command, days int, seed int64) error {
	if days < 1 {
		return NewExitError(ExitCommandError, "--days must be at least 1")
	}

	s, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	engineOpts := []engine.Option{engine.WithLogger(newLogger(opts))}
	if seed != 0 {
		engineOpts = append(engineOpts, engine.WithSeed(seed))
	}
	eng := engine.New(s, engineOpts...)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	var allEvents []entity.Event

	for i := 0; i < days; i++ {
		events, err := eng.AdvanceDay(cmd.Context())
		if err != nil {
			return WrapExitError(ExitFailure, "advance day", err)
		}
		allEvents = append(allEvents, events...)
		for _, ev := range events {
			formatter.Text("day %d  %-24s %s", ev.SimDay, ev.Type, ev.Detail)
		}
	}

	if formatter.IsJSON() {
		return formatter.JSON(map[string]any{"events": allEvents})
	}
	return nil
}
