package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frozify/storefront/internal/city"
)

func newCityCmd(appFor appProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "city",
		Short: "Choose the delivery city",
	}

	list := &cobra.Command{
		Use:         "list",
		Short:       "List delivery cities",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offline: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CITY\tSTATUS")
			for _, c := range city.Catalog() {
				status := "coming soon"
				if c.Available {
					status = "available"
				}
				fmt.Fprintf(tw, "%s\t%s\n", c.Name, status)
			}
			return tw.Flush()
		},
	}

	selectCmd := &cobra.Command{
		Use:   "select <name>",
		Short: "Set the delivery city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			selected, err := a.session.City.Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Delivering to %s\n", selected.Name)
			return nil
		},
	}

	cmd.AddCommand(list, selectCmd)
	return cmd
}
