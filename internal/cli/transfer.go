package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrilog/internal/savefile"
	"nutrilog/internal/workspace"
	"nutrilog/models"
)

// entryTransfer copies one savefile entry to or from a standalone file.
type entryTransfer struct {
	what      string
	extension string
	export    func(string, *models.Tracker) error
	load      func(string, *models.Tracker) error
}

var (
	catalogueTransfer = entryTransfer{"catalogue", ".ctc", savefile.ExportCatalogue, savefile.ImportCatalogue}
	recipesTransfer   = entryTransfer{"recipes", ".ctr", savefile.ExportRecipes, savefile.ImportRecipes}
	daysTransfer      = entryTransfer{"daily intake", ".ctd", savefile.ExportDailyIntakes, savefile.ImportDailyIntakes}
)

func (a *app) exportCommand(e entryTransfer) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file" + e.extension + ">",
		Short: "Write the " + e.what + " to a standalone file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.view(func(t *models.Tracker) error {
				return e.export(args[0], t)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", e.what, args[0])
			return nil
		},
	}
}

// importCommand replaces the entry in the savefile. A file that fails to
// decode leaves the savefile untouched.
func (a *app) importCommand(e entryTransfer) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file" + e.extension + ">",
		Short: "Replace the " + e.what + " with a standalone file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.update(cmd.Context(), func(t *models.Tracker) error {
				return e.load(args[0], t)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", e.what, args[0])
			return nil
		},
	}
}

func (a *app) saveAsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save-as <path>",
		Short: "Write the savefile under a new path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(a.file, nil)
			if err != nil {
				return err
			}
			if err := ws.SaveAs(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s\n", a.file, ws.Path())
			return nil
		},
	}
}
