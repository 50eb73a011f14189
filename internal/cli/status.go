package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show the simulation clock, inventory, and open orders",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	state, err := s.State(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "read state", err)
	}
	inventory, err := s.AllInventory(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "read inventory", err)
	}
	plans, err := s.PlanLines(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "read plan", err)
	}
	purchases, err := s.PurchaseOrders(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "read purchase orders", err)
	}
	production, err := s.ProductionOrders(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "read production orders", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.IsJSON() {
		return formatter.JSON(map[string]any{
			"current_day":       state.CurrentDay,
			"capacity_per_day":  state.CapacityPerDay,
			"inventory":         len(inventory),
			"plan_lines":        len(plans),
			"purchase_orders":   len(purchases),
			"production_orders": len(production),
		})
	}

	formatter.Text("current day:       %d", state.CurrentDay)
	formatter.Text("capacity per day:  %d", state.CapacityPerDay)
	formatter.Text("inventory rows:    %d", len(inventory))
	formatter.Text("plan lines:        %d", len(plans))
	formatter.Text("purchase orders:   %d", len(purchases))
	formatter.Text("production orders: %d", len(production))
	return nil
}
