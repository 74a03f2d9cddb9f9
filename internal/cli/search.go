package cli

import (
	"github.com/spf13/cobra"
)

func newSearchCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search FIELD:VALUE...",
		Short: "Find products whose fields contain every given value",
		Long: "Each criterion is field:value where field is one of id, name, quantity, price or category.\n" +
			"Matching is a case-insensitive substring match and all criteria must hold.\n" +
			"Arguments without a colon are ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			products, err := svcs.search.Search(cmd.Context(), args)
			if err != nil {
				return err
			}

			return printProducts(a.stdout, products, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print products as JSON")
	return cmd
}
