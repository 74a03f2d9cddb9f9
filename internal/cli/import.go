package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import products from one or more CSV files",
		Long: "Import products from CSV files with a name,quantity,price,category header.\n" +
			"Files are loaded in order in a single transaction; the first bad row aborts the import and nothing is kept.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			res, err := svcs.importer.Import(cmd.Context(), args)
			if err != nil {
				return err
			}

			for _, f := range res.Files {
				fmt.Fprintf(a.stdout, "%s: %d rows\n", f.Path, f.Rows)
			}
			fmt.Fprintf(a.stdout, "imported %d rows from %d files\n", res.Rows, len(res.Files))
			return nil
		},
	}
}
