package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrilog/models"
)

func (a *app) targetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage daily nutrition targets",
	}
	cmd.AddCommand(a.targetSetCommand())
	return cmd
}

func (a *app) targetSetCommand() *cobra.Command {
	var targets models.NutritionData
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the daily targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if targets.Calories < 0 || targets.Fat < 0 || targets.Carbs < 0 || targets.Protein < 0 {
				return fmt.Errorf("targets must not be negative")
			}
			err := a.update(cmd.Context(), func(t *models.Tracker) error {
				t.Targets = targets
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Targets: %.0f kcal, fat %.1f g, carbs %.1f g, protein %.1f g\n",
				targets.Calories, targets.Fat, targets.Carbs, targets.Protein)
			return nil
		},
	}
	cmd.Flags().Float64Var(&targets.Calories, "kcal", 0, "Calories per day")
	cmd.Flags().Float64Var(&targets.Fat, "fat", 0, "Fat per day, g")
	cmd.Flags().Float64Var(&targets.Carbs, "carbs", 0, "Carbohydrates per day, g")
	cmd.Flags().Float64Var(&targets.Protein, "protein", 0, "Protein per day, g")
	return cmd
}
