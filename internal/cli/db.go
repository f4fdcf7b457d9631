package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutrilog/internal/db"
	"nutrilog/internal/workspace"
	"nutrilog/models"
)

func (a *app) dbCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Copy the savefile to and from a database mirror",
	}
	cmd.PersistentFlags().StringVar(&url, "database", "", "Database URL (default from DATABASE_URL)")
	cmd.AddCommand(a.dbExportCommand(&url), a.dbImportCommand(&url), a.dbListCommand(&url))
	return cmd
}

func (a *app) openStore(url string) (*db.Store, error) {
	cfg := a.cfg.Database
	if strings.TrimSpace(url) != "" {
		cfg.URL = url
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("no database configured: pass --database or set DATABASE_URL")
	}
	database, err := db.Configure(cfg)
	if err != nil {
		return nil, err
	}
	return db.NewStore(database), nil
}

func (a *app) dbExportCommand(url *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the savefile's tracker to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(*url)
			if err != nil {
				return err
			}
			var name string
			err = a.view(func(t *models.Tracker) error {
				name = t.Name
				return store.SaveTracker(cmd.Context(), t)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to the database\n", name)
			return nil
		},
	}
}

func (a *app) dbImportCommand(url *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <name>",
		Short: "Replace the savefile with a tracker stored in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(*url)
			if err != nil {
				return err
			}
			tracker, err := store.LoadTracker(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// The mirror already holds this copy, only the savefile is written.
			if err := workspace.New(tracker, a.file, nil).Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q into %s\n", args[0], a.file)
			return nil
		},
	}
}

func (a *app) dbListCommand(url *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trackers stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(*url)
			if err != nil {
				return err
			}
			names, err := store.TrackerNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
