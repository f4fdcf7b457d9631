package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrilog/models"
)

func (a *app) dayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Log and inspect daily intake",
	}
	cmd.AddCommand(
		a.dayShowCommand(),
		a.dayAddCommand(),
		a.dayLogCommand(),
		a.dayDuplicateCommand(),
		a.exportCommand(daysTransfer),
		a.importCommand(daysTransfer),
	)
	return cmd
}

func (a *app) dayShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Show the servings logged on a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateArg(firstArg(args))
			if err != nil {
				return err
			}
			return a.view(func(t *models.Tracker) error {
				day, ok := t.DailyIntake(date)
				if !ok {
					return fmt.Errorf("show %s: %w", date, models.ErrDailyIntakeNotFound)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Date: %s\n", date)
				fmt.Fprintln(out, "TYPE\tITEM\tPORTION G\tKCAL\tFAT\tCARBS\tPROTEIN")
				for _, servings := range [][]models.Serving{day.Products, day.Recipes} {
					for _, s := range servings {
						fmt.Fprintf(out, "%s\t%s\t%.1f\t%s\n", s.ItemType.Name(), s.Label(), s.Portion, formatNutrition(s.ConsumedNutrition()))
					}
				}
				total := day.TotalConsumedNutrition()
				fmt.Fprintf(out, "TOTAL\t\t\t%s\n", formatNutrition(total))
				if !t.Targets.IsZero() {
					remaining := t.Targets.Add(total.Scale(-1))
					fmt.Fprintf(out, "REMAINING\t\t\t%s\n", formatNutrition(remaining))
				}
				return nil
			})
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *app) dayAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [date]",
		Short: "Start an empty log for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateArg(firstArg(args))
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if _, ok := t.DailyIntake(date); ok {
					return fmt.Errorf("add %s: %w", date, models.ErrDailyIntakeExists)
				}
				t.AddDailyIntake(date)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started a log for %s\n", date)
			return nil
		},
	}
}

func (a *app) dayLogCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "log <PRODUCT|RECIPE> <id> <portion-g>",
		Short: "Log a portion of a product or recipe",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := models.ParseServingType(args[0])
			if !ok {
				return fmt.Errorf("invalid type %q (expected PRODUCT or RECIPE)", args[0])
			}
			id, err := parseIDArg("item id", args[1])
			if err != nil {
				return err
			}
			portion, err := parsePositiveFloat("portion", args[2])
			if err != nil {
				return err
			}
			day, err := parseDateArg(date)
			if err != nil {
				return err
			}
			var logged models.Serving
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				var item models.Consumable
				if kind == models.ServingTypeRecipe {
					recipe, err := lookupRecipe(t, id)
					if err != nil {
						return err
					}
					item = recipe
				} else {
					product, err := lookupProduct(t, id)
					if err != nil {
						return err
					}
					item = product
				}
				intake, ok := t.DailyIntake(day)
				if !ok {
					intake = t.AddDailyIntake(day)
				}
				logged = models.NewServing(item, portion)
				intake.Add(logged)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %.1f g of %s on %s (%.0f kcal)\n", portion, logged.Label(), day, logged.ConsumedNutrition().Calories)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to log on, YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) dayDuplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <source-date> <target-date>",
		Short: "Copy a day's servings onto another date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			target, err := parseDateArg(args[1])
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if _, exists := t.DailyIntake(target); exists {
					return fmt.Errorf("duplicate onto %s: %w", target, models.ErrDailyIntakeExists)
				}
				if source == nowFunc().Format(models.DateLayout) {
					return t.DuplicateTodaysDailyIntake(target)
				}
				return t.DuplicateDailyIntake(source, target)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", source, target)
			return nil
		},
	}
}
