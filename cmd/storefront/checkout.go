package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frozify/storefront/internal/checkout"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
)

func newCheckoutCmd(appFor appProvider) *cobra.Command {
	var details checkout.ShippingDetails
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place the order and print the WhatsApp hand-off link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			flow := a.session.Checkout

			if !flow.Next() {
				return pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
			}

			// an empty --city keeps the prefilled delivery city
			shipping := flow.View().Shipping
			if v := strings.TrimSpace(details.Address); v != "" {
				shipping.Address = v
			}
			if v := strings.TrimSpace(details.City); v != "" {
				shipping.City = v
			}
			if v := strings.TrimSpace(details.Phone); v != "" {
				shipping.Phone = v
			}
			if err := flow.SetShipping(shipping); err != nil {
				return err
			}
			if !flow.Next() {
				return pkgerrors.New(pkgerrors.CodeValidation, "address, city and phone are required")
			}

			receipt, err := flow.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, receipt.Summary)
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, "Send it on WhatsApp:", receipt.HandoffURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&details.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&details.City, "city", "", "delivery city, defaults to the selected city")
	cmd.Flags().StringVar(&details.Phone, "phone", "", "contact phone")
	return cmd
}
