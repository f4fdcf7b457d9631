// Package cli implements the nutrilog terminal tool. Every command opens the
// savefile named by --file, applies its change and writes the file back.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nutrilog/internal/config"
	applog "nutrilog/internal/log"
)

var loadConfig = config.Load

type app struct {
	file     string
	logLevel string
	cfg      config.Config
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nutrilog",
		Short:         "nutrilog tracks products, recipes and daily intake from your terminal",
		Long:          "nutrilog manages a product catalogue, recipes built from it and a daily intake log stored in a .ct savefile.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare()
		},
	}
	root.PersistentFlags().StringVar(&a.file, "file", "", "Path to the .ct savefile (default from NUTRILOG_SAVEFILE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		a.initCommand(),
		a.productCommand(),
		a.recipeCommand(),
		a.dayCommand(),
		a.targetCommand(),
		a.dbCommand(),
		a.saveAsCommand(),
	)
	return root
}

func (a *app) prepare() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.file == "" {
		a.file = cfg.Savefile.Path
	}
	// Terminal output stays quiet unless asked for.
	level := a.logLevel
	if level == "" {
		level = "warn"
	}
	return applog.SetLevel(level)
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
