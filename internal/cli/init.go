package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrilog/internal/workspace"
)

func (a *app) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty savefile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := a.savefileExists()
			if err != nil {
				return err
			}
			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "Savefile %s already exists\n", a.file)
				return nil
			}
			ws := workspace.New(nil, a.file, nil)
			if err := ws.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created savefile %s\n", a.file)
			return nil
		},
	}
}
