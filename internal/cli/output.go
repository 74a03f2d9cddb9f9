package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/tuanvumaihuynh/inventory/internal/model"
)

// printProducts writes products as an aligned table, or as a JSON array.
func printProducts(w io.Writer, products []model.Product, asJSON bool) error {
	if asJSON {
		if products == nil {
			products = []model.Product{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}

	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "no products")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tPRICE\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			p.ID, p.Name, p.Quantity, strconv.FormatFloat(p.Price, 'f', -1, 64), p.Category)
	}
	return tw.Flush()
}
