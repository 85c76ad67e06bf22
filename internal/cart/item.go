package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frozify/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

// Product is the catalog data a line item is created from.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageRef string
}

// FromCatalog converts an API product into a cart product.
func FromCatalog(p storefront.Product) Product {
	return Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageRef: p.Image}
}

// LineItem is one product in the cart. The JSON names match the persisted local-storage form.
type LineItem struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
	ImageRef  string          `json:"image,omitempty"`
}

// Subtotal is UnitPrice × Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums the subtotals of items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums the quantities of items.
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Encode renders items in the persisted form.
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(raw), nil
}

// Decode parses the persisted form. Lines without an id are dropped, quantities below one are
// raised to one and repeated ids are merged, so the result always satisfies the cart invariants.
func Decode(raw string) ([]LineItem, error) {
	var parsed []LineItem
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	items := make([]LineItem, 0, len(parsed))
	index := make(map[string]int, len(parsed))
	for _, item := range parsed {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if pos, ok := index[item.ID]; ok {
			items[pos].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	return items, nil
}
