package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/service"
)

func newAddCommand(a *app) *cobra.Command {
	var params service.AddProductParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a single product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			product, err := svcs.product.AddProduct(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "added product %d\n", product.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Name, "name", "", "product name")
	f.IntVar(&params.Quantity, "quantity", 0, "units in stock")
	f.Float64Var(&params.Price, "price", 0, "unit price")
	f.StringVar(&params.Category, "category", "", "product category")
	for _, name := range []string{"name", "quantity", "price", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete the product with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			n, err := svcs.product.DeleteProduct(cmd.Context(), id)
			if err != nil {
				return err
			}

			if n == 0 {
				fmt.Fprintf(a.stdout, "no product with id %d\n", id)
				return nil
			}
			fmt.Fprintf(a.stdout, "deleted product %d\n", id)
			return nil
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			products, err := svcs.product.ListAllProducts(cmd.Context())
			if err != nil {
				return err
			}

			return printProducts(a.stdout, products, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print products as JSON")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.ValidationErr.WrapParent(err).WithMsg("invalid product id %q: not an integer", s)
	}
	return id, nil
}
