package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *MenuDocument {
	price := 3.5
	return &MenuDocument{
		Source:     SourceStore,
		Restaurant: Restaurant{ID: "spice-garden", Name: "Spice Garden", Currency: "INR"},
		Categories: []MenuCategory{
			{
				Key: "starters", Name: "Starters", Enabled: true,
				Items: []Item{{ID: "samosa", Name: "Samosa", Price: &price, Available: true}},
			},
			{
				Key: "specials", Name: "Specials", Enabled: false,
				Items: []Item{{ID: "secret-curry", Name: "Secret Curry", Price: &price, Available: true}},
			},
		},
	}
}

func TestDinerViewHidesDisabledCategories(t *testing.T) {
	view := sampleDoc().DinerView()

	require.Len(t, view.Categories, 1)
	assert.Equal(t, "starters", view.Categories[0].Key)
}

func TestDinerViewKeepsUnavailableItemsListed(t *testing.T) {
	doc := sampleDoc()
	doc.Categories[0].Items[0].Available = false

	view := doc.DinerView()

	require.Len(t, view.Categories[0].Items, 1)
	assert.False(t, view.Categories[0].Items[0].Available)
}

func TestFindItem(t *testing.T) {
	doc := sampleDoc()

	item, ok := doc.FindItem("secret-curry")
	require.True(t, ok)
	assert.Equal(t, "Secret Curry", item.Name)

	_, ok = doc.FindItem("nope")
	assert.False(t, ok)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		amount   float64
		expected string
	}{
		{"inr symbol", "INR", 3.5, "₹3.50"},
		{"usd symbol", "usd", 12, "$12.00"},
		{"unknown code prefixes", "AED", 9.99, "AED 9.99"},
		{"empty currency", "", 4, "4.00"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, FormatPrice(testCase.currency, testCase.amount))
		})
	}
}

func TestDisplayPricePicksCheapestSize(t *testing.T) {
	item := Item{Sizes: []SizeVariant{{Name: "Large", Price: 5}, {Name: "Small", Price: 2.5}}}
	assert.Equal(t, 2.5, item.DisplayPrice())

	flat := 7.0
	item.Price = &flat
	assert.Equal(t, 7.0, item.DisplayPrice())
}
