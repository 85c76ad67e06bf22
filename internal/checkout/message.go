package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/frozify/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

const handoffBaseURL = "https://wa.me/"

// SummaryInput is everything the confirmation message mentions.
type SummaryInput struct {
	OrderID  string
	Customer string
	Shipping ShippingDetails
	Items    []cart.LineItem
	Total    decimal.Decimal
}

// BuildSummary renders the order message the shopper sends to confirm by hand.
func BuildSummary(in SummaryInput) string {
	lines := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, fmt.Sprintf("• %s (%d x Rs.%s) = Rs.%s",
			item.Name, item.Quantity, item.UnitPrice.String(), item.Subtotal().String()))
	}

	var b strings.Builder
	b.WriteString("*NEW ORDER FROM FROZIFY* 🍦\n\n")
	fmt.Fprintf(&b, "*Order ID:* %s\n", in.OrderID)
	fmt.Fprintf(&b, "*Customer:* %s\n", in.Customer)
	fmt.Fprintf(&b, "*Phone:* %s\n", in.Shipping.Phone)
	fmt.Fprintf(&b, "*City:* %s\n", in.Shipping.City)
	fmt.Fprintf(&b, "*Address:* %s\n\n", in.Shipping.Address)
	fmt.Fprintf(&b, "*ITEMS:*\n%s\n\n", strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "*TOTAL PRICE: Rs. %s*\n\n", in.Total.String())
	b.WriteString("Please confirm my order. Thank you!")
	return b.String()
}

// HandoffURL builds the wa.me deep link carrying message to recipient.
// Spaces are encoded as %20 so messaging apps do not show literal plus signs.
func HandoffURL(recipient, message string) string {
	recipient = strings.TrimPrefix(strings.TrimSpace(recipient), "+")
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return handoffBaseURL + recipient + "?text=" + encoded
}
