package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frozify/storefront/internal/cart"
)

func newCartCmd(appFor appProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart with its total",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			return printCart(a)
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product, merging with an existing line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = parseQuantity(args[1]); err != nil {
					return err
				}
			}
			product, err := a.api.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.session.Cart.AddItem(cmd.Context(), cart.FromCatalog(*product), qty); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %d x %s\n", qty, product.Name)
			return printCart(a)
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			if err := a.session.Cart.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			return printCart(a)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Drop a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			if err := a.session.Cart.RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCart(a)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			if err := a.session.Cart.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Cart cleared")
			return nil
		},
	}

	cmd.AddCommand(show, add, update, remove, clearCmd)
	return cmd
}

func parseQuantity(raw string) (int, error) {
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a number: %q", raw)
	}
	return qty, nil
}

func printCart(a *app) error {
	snap := a.session.Cart.Snapshot()
	if len(snap.Items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\tRs. %s\tRs. %s\n", item.ID, item.Name, item.Quantity, item.UnitPrice.String(), item.Subtotal().String())
	}
	fmt.Fprintf(tw, "\t\t%d\t\tRs. %s\n", snap.ItemCount, snap.Total.String())
	return tw.Flush()
}
