package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

func (a *app) recipeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage recipes",
	}
	cmd.AddCommand(
		a.recipeListCommand(),
		a.recipeShowCommand(),
		a.recipeAddCommand(),
		a.recipeRemoveCommand(),
		a.recipeDuplicateCommand(),
		a.ingredientCommand(),
		a.exportCommand(recipesTransfer),
		a.importCommand(recipesTransfer),
	)
	return cmd
}

func (a *app) recipeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(func(t *models.Tracker) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tCATEGORY\tINGREDIENTS\tNET G\tKCAL/100G")
				for _, id := range t.RecipeIDs() {
					if id == 0 {
						continue
					}
					r := t.Recipes[id]
					fmt.Fprintf(out, "%d\t%s\t%s\t%d\t%.1f\t%.1f\n", r.ID, r.Name, r.Category.Name(), len(r.Ingredients), r.TotalNetMass(), r.NutritionPer100g().Calories)
				}
				return nil
			})
		},
	}
}

func (a *app) recipeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe with its ingredients and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("recipe id", args[0])
			if err != nil {
				return err
			}
			return a.view(func(t *models.Tracker) error {
				r, err := lookupRecipe(t, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recipe: %s\nCategory: %s\nDescription: %s\nCreated: %s\n",
					r.Label(), r.Category, pages.DefaultDash(r.Details.Description), pages.DefaultDash(r.Details.Created))
				fmt.Fprintln(out, "ID\tPRODUCT\tAMOUNT\tNET\tMASS G\tNET G\tPRICE")
				for _, iid := range r.IngredientIDs() {
					i := r.Ingredients[iid]
					product := ""
					if i.Product != nil {
						product = i.Product.Label()
					}
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%.1f\t%.1f\t%.2f\n", i.ID, product, pages.AmountDescription(i), pages.NetDescription(i), i.Mass(), i.NetMass(), i.Price())
				}
				totals := r.TotalNutrition()
				per100g := r.NutritionPer100g()
				fmt.Fprintf(out, "Total: %.1f g net, %.1f kcal, fat %.1f g, carbs %.1f g, protein %.1f g, price %.2f\n",
					r.TotalNetMass(), totals.Calories, totals.Fat, totals.Carbs, totals.Protein, r.TotalPrice())
				fmt.Fprintf(out, "Per 100 g: %.1f kcal, fat %.1f g, carbs %.1f g, protein %.1f g, price %.2f\n",
					per100g.Calories, per100g.Fat, per100g.Carbs, per100g.Protein, r.PricePer100g())
				return nil
			})
		},
	}
}

func (a *app) recipeAddCommand() *cobra.Command {
	var category, description string
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a recipe at the next free ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			err := a.update(cmd.Context(), func(t *models.Tracker) error {
				name := ""
				if len(args) == 1 {
					name = strings.TrimSpace(args[0])
				}
				if name == "" {
					name = pages.NextUntitledName(t.RecipeNames(), "Untitled Recipe")
				}
				recipe := t.AddRecipe(name, models.ParseRecipeCategory(category), strings.TrimSpace(description))
				label = recipe.Label()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added recipe %s\n", label)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "OTHER", "Recipe category, e.g. MAIN_COURSE, SALAD")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description")
	return cmd
}

func (a *app) recipeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("recipe id", args[0])
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if _, err := lookupRecipe(t, id); err != nil {
					return err
				}
				t.RemoveRecipe(id)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed recipe %d\n", id)
			return nil
		},
	}
}

func (a *app) recipeDuplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a recipe to the next free ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("recipe id", args[0])
			if err != nil {
				return err
			}
			var label string
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				duplicate, err := t.DuplicateRecipe(id)
				if err != nil {
					return err
				}
				duplicate.Name = pages.NextCopiedName(t.RecipeNames(), duplicate.Name, "Untitled Recipe")
				label = duplicate.Label()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Duplicated as %s\n", label)
			return nil
		},
	}
}

func (a *app) ingredientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Manage recipe ingredients",
	}
	cmd.AddCommand(
		a.ingredientAddCommand(),
		a.ingredientRemoveCommand(),
		a.ingredientRelativeCommand(),
	)
	return cmd
}

func (a *app) ingredientAddCommand() *cobra.Command {
	var (
		definition    string
		netAmount     float64
		netDefinition string
		relativeTo    int
	)
	cmd := &cobra.Command{
		Use:   "add <recipe-id> <product-id> <amount>",
		Short: "Add an ingredient to a recipe",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs("id", args[:2])
			if err != nil {
				return err
			}
			amount, err := parsePositiveFloat("amount", args[2])
			if err != nil {
				return err
			}
			var label string
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				recipe, err := lookupRecipe(t, ids[0])
				if err != nil {
					return err
				}
				product, err := lookupProduct(t, ids[1])
				if err != nil {
					return err
				}
				if relativeTo != 0 && recipe.Ingredient(relativeTo) == nil {
					return fmt.Errorf("reference %d of %s: %w", relativeTo, recipe.Label(), models.ErrIngredientNotFound)
				}
				ingredient := models.NewIngredient(product, amount)
				ingredient.AmountDefinition = models.ParseAmountDefinition(definition)
				if netDefinition != "" {
					ingredient.NetAmountDefinition = models.ParseNetAmountDefinition(netDefinition)
					ingredient.NetAmount = netAmount
				}
				recipe.AddIngredient(ingredient)
				if relativeTo != 0 {
					// Nothing refers to a new ingredient, so this cannot close a cycle.
					if err := recipe.SetRelativeReference(ingredient.ID, relativeTo); err != nil {
						return err
					}
				}
				label = ingredient.Label()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added ingredient %s\n", label)
			return nil
		},
	}
	cmd.Flags().StringVar(&definition, "definition", "GRAMS", "Amount definition: GRAMS, RELATIVE_TO_AMOUNT or RELATIVE_TO_NET_MASS")
	cmd.Flags().Float64Var(&netAmount, "net", 0, "Net amount, in grams or % of the amount")
	cmd.Flags().StringVar(&netDefinition, "net-definition", "", "Net definition: GRAMS, EQUAL or RELATIVE_TO_AMOUNT (default equal to amount)")
	cmd.Flags().IntVar(&relativeTo, "relative-to", 0, "Ingredient ID a relative amount refers to")
	return cmd
}

func (a *app) ingredientRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <recipe-id> <ingredient-id>",
		Short: "Remove an ingredient; references to it are cleared",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs("id", args)
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				recipe, err := lookupRecipe(t, ids[0])
				if err != nil {
					return err
				}
				if !recipe.RemoveIngredient(ids[1]) {
					return fmt.Errorf("ingredient %d of %s: %w", ids[1], recipe.Label(), models.ErrIngredientNotFound)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed ingredient %d from recipe %d\n", ids[1], ids[0])
			return nil
		},
	}
}

func (a *app) ingredientRelativeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relative <recipe-id> <ingredient-id> <target-id>",
		Short: "Point a relative ingredient at another ingredient (0 clears)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs("id", args)
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				recipe, err := lookupRecipe(t, ids[0])
				if err != nil {
					return err
				}
				if ids[2] == 0 {
					if !recipe.ClearRelativeReference(ids[1]) {
						return fmt.Errorf("ingredient %d of %s: %w", ids[1], recipe.Label(), models.ErrIngredientNotFound)
					}
					return nil
				}
				return recipe.SetRelativeReference(ids[1], ids[2])
			})
			if err != nil {
				return err
			}
			if ids[2] == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared reference of ingredient %d\n", ids[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingredient %d now refers to ingredient %d\n", ids[1], ids[2])
			return nil
		},
	}
}
