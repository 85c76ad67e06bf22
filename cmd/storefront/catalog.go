package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProductsCmd(appFor appProvider) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			products, err := a.api.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
			for _, p := range products {
				if category != "" && !strings.EqualFold(p.Category, category) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\tRs. %s\n", p.ID, p.Name, p.Category, p.Price.String())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list products in this category")
	return cmd
}
