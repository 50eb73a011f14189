package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgarrido/supplysim/internal/importer"
)

// NewImportCommand creates the import command. Each document kind is
// optional; documents are imported in plan, providers, inventory order
// so BOM products exist before suppliers and stock reference them.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var planPath, providersPath, inventoryPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import plan, providers, and initial inventory documents",
		Long: `Import JSON configuration into the simulation database.

Documents are validated before any write; a malformed document aborts
its import with the store untouched. Re-importing a document is an
idempotent upsert.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if planPath == "" && providersPath == "" && inventoryPath == "" {
				return NewExitError(ExitCommandError, "nothing to import: pass --plan, --providers, or --inventory")
			}
			return runImport(rootOpts, cmd, planPath, providersPath, inventoryPath)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "plan document (models, BOMs, daily plan)")
	cmd.Flags().StringVar(&providersPath, "providers", "", "providers document")
	cmd.Flags().StringVar(&inventoryPath, "inventory", "", "initial inventory document")

	return cmd
}

func runImport(opts *RootOptions, cmd *cobra.Command, planPath, providersPath, inventoryPath string) error {
	s, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	ctx := cmd.Context()
	imported := []string{}

	type step struct {
		name string
		path string
		fn   func([]byte) error
	}
	steps := []step{
		{"plan", planPath, func(raw []byte) error { return importer.ImportPlan(ctx, s, raw) }},
		{"providers", providersPath, func(raw []byte) error { return importer.ImportProviders(ctx, s, raw) }},
		{"inventory", inventoryPath, func(raw []byte) error { return importer.ImportInventory(ctx, s, raw) }},
	}

	for _, st := range steps {
		if st.path == "" {
			continue
		}
		raw, err := os.ReadFile(st.path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("read %s document", st.name), err)
		}
		if err := st.fn(raw); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("import %s", st.name), err)
		}
		imported = append(imported, st.name)
		formatter.Text("imported %s from %s", st.name, st.path)
	}

	if formatter.IsJSON() {
		return formatter.JSON(map[string]any{"imported": imported})
	}
	return nil
}
