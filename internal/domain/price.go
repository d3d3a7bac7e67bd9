package domain

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// DisplayPrice is the price shown when no size is picked: the flat price
// when set, otherwise the cheapest size.
func (i *Item) DisplayPrice() float64 {
	if i.Price != nil {
		return *i.Price
	}
	var min float64
	for idx, size := range i.Sizes {
		if idx == 0 || size.Price < min {
			min = size.Price
		}
	}
	return min
}

// SizePrice returns the price of the named size variant.
func (i *Item) SizePrice(sizeName string) (float64, bool) {
	for _, size := range i.Sizes {
		if size.Name == sizeName {
			return size.Price, true
		}
	}
	return 0, false
}

// FormatPrice renders an amount with the currency symbol, falling back to
// the ISO code prefix for currencies without a known symbol.
func FormatPrice(currency string, amount float64) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	if symbol, ok := currencySymbols[code]; ok {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}
	return fmt.Sprintf("%s %.2f", code, amount)
}
