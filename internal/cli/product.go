package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

type productFlags struct {
	category     string
	calories     float64
	fat          float64
	carbs        float64
	protein      float64
	amount       float64
	unit         string
	density      float64
	price        float64
	store        string
	manufacturer string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "OTHER", "Product category, e.g. GRAIN, DAIRY, FRUIT")
	cmd.Flags().Float64Var(&f.calories, "kcal", 0, "Calories per 100 g")
	cmd.Flags().Float64Var(&f.fat, "fat", 0, "Fat per 100 g")
	cmd.Flags().Float64Var(&f.carbs, "carbs", 0, "Carbohydrates per 100 g")
	cmd.Flags().Float64Var(&f.protein, "protein", 0, "Protein per 100 g")
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "Packaging amount")
	cmd.Flags().StringVar(&f.unit, "unit", "KG", "Packaging unit: G, KG, ML or L")
	cmd.Flags().Float64Var(&f.density, "density", 1, "Density in g/ml for liquid packaging")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Package price")
	cmd.Flags().StringVar(&f.store, "store", "", "Store the product is bought at")
	cmd.Flags().StringVar(&f.manufacturer, "manufacturer", "", "Manufacturer")
}

func (f *productFlags) apply(p *models.Product) {
	p.Category = models.ParseProductCategory(f.category)
	p.Nutrition = models.NutritionData{Calories: f.calories, Fat: f.fat, Carbs: f.carbs, Protein: f.protein}
	p.Details.PackagingAmount = f.amount
	p.Details.PackagingUnit = models.ParseMeasurementUnit(f.unit)
	if f.density > 0 {
		p.Details.Density = f.density
	}
	p.Details.Price = f.price
	p.Details.Store = strings.TrimSpace(f.store)
	p.Details.Manufacturer = strings.TrimSpace(f.manufacturer)
	p.Details.LastUpdate = nowFunc().Format(models.DateLayout)
}

func (a *app) productCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalogue",
	}
	cmd.AddCommand(
		a.productListCommand(),
		a.productAddCommand(),
		a.productRemoveCommand(),
		a.productDuplicateCommand(),
		a.productMoveCommand(),
		a.productRenumberCommand(),
		a.exportCommand(catalogueTransfer),
		a.importCommand(catalogueTransfer),
	)
	return cmd
}

func (a *app) productListCommand() *cobra.Command {
	var filters pages.ProductFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Category = strings.ToUpper(strings.TrimSpace(filters.Category))
			return a.view(func(t *models.Tracker) error {
				catalogue := make([]*models.Product, 0, len(t.Products))
				for _, id := range t.ProductIDs() {
					if id != 0 {
						catalogue = append(catalogue, t.Products[id])
					}
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tCATEGORY\tKCAL\tFAT\tCARBS\tPROTEIN\tPRICE/KG")
				for _, p := range pages.FilterProducts(catalogue, filters) {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Category.Name(), formatNutrition(p.Nutrition), p.Details.PricePerGram()*1000)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filters.Query, "query", "q", "", "Match name, store or manufacturer")
	cmd.Flags().StringVar(&filters.Category, "category", "", "Only list this category")
	return cmd
}

func (a *app) productAddCommand() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a product at the next free ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			err := a.update(cmd.Context(), func(t *models.Tracker) error {
				name := ""
				if len(args) == 1 {
					name = strings.TrimSpace(args[0])
				}
				if name == "" {
					name = pages.NextUntitledName(t.ProductNames(), "Untitled Product")
				}
				product := t.AddProduct(name, models.ProductCategoryOther)
				flags.apply(product)
				label = product.Label()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added product %s\n", label)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) productRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("product id", args[0])
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if _, err := lookupProduct(t, id); err != nil {
					return err
				}
				t.RemoveProduct(id)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed product %d\n", id)
			return nil
		},
	}
}

func (a *app) productDuplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a product to the ID after it, shifting later products up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("product id", args[0])
			if err != nil {
				return err
			}
			var label string
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				duplicate, err := t.DuplicateProduct(id)
				if err != nil {
					return err
				}
				duplicate.Name = pages.NextCopiedName(t.ProductNames(), duplicate.Name, "Untitled Product")
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

func (a *app) productMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a product to a position and renumber the catalogue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs("product id", args)
			if err != nil {
				return err
			}
			var label string
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if err := t.SetProductID(ids[0], ids[1]); err != nil {
					return err
				}
				label = t.Product(ids[1]).Label()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", label)
			return nil
		},
	}
}

func (a *app) productRenumberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renumber [id...]",
		Short: "Close gaps in product IDs, or assign 1..N in the given order",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseIDArgs("product id", args)
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(t *models.Tracker) error {
				if len(order) == 0 {
					t.RenumberProducts()
					return nil
				}
				return t.RenumberProductIDs(order)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Renumbered products")
			return nil
		},
	}
}
