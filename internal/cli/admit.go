package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgarrido/supplysim/internal/engine"
)

// NewAdmitCommand creates the admit command.
func NewAdmitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admit <plan-line-id>",
		Short: "Promote a daily plan line to a production order",
		Long: `Check whether a plan line's BOM materials are on hand and, if so,
create a production order and consume the materials atomically. A
refusal enumerates each missing material and leaves the store
unchanged.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, "plan line id must be an integer")
			}
			return runAdmit(rootOpts, cmd, planID)
		},
	}

	return cmd
}

func runAdmit(opts *RootOptions, cmd *cobra.Command, planID int64) error {
	s, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	eng := engine.New(s, engine.WithLogger(newLogger(opts)))

	result, err := eng.Admit(cmd.Context(), planID)
	if err != nil {
		return WrapExitError(ExitFailure, "admit", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.IsJSON() {
		if err := formatter.JSON(result); err != nil {
			return err
		}
	} else {
		formatter.Text("%s", result.Message)
	}

	if !result.OK {
		return NewExitError(ExitFailure, result.Message)
	}
	return nil
}
