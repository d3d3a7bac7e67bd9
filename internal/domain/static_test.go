package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spiceGardenJSON = `{
  "currency": "INR",
  "restaurant": {
    "name": "Spice Garden",
    "tagline": "Authentic Indian Kitchen",
    "address": "12 MG Road, Bengaluru",
    "phone": "+91 98765 43210",
    "openHours": "11:00-23:00",
    "logoUrl": "/static/restaurants/spice-garden/logo.png"
  },
  "categories": [
    {
      "name": "Starters",
      "enabled": true,
      "items": [
        {
          "name": "Samosa",
          "description": "Crisp pastry with spiced potato filling",
          "price": 3.50,
          "type": "veg",
          "available": true,
          "tags": ["popular"]
        }
      ]
    }
  ]
}`

func TestParseStaticMenu(t *testing.T) {
	doc, err := ParseStaticMenu("spice-garden", []byte(spiceGardenJSON))
	require.NoError(t, err)

	assert.Equal(t, SourceStatic, doc.Source)
	assert.Equal(t, "spice-garden", doc.Restaurant.ID)
	assert.Equal(t, "Spice Garden", doc.Restaurant.Name)
	assert.Equal(t, "INR", doc.Restaurant.Currency)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "starters", doc.Categories[0].Key)
	require.Len(t, doc.Categories[0].Items, 1)

	item := doc.Categories[0].Items[0]
	assert.Equal(t, "Samosa", item.Name)
	assert.Equal(t, "samosa", item.ID)
	assert.Equal(t, TypeVeg, item.Type)
	assert.True(t, item.Available)
	require.NotNil(t, item.Price)
	assert.Equal(t, "₹3.50", FormatPrice(doc.Restaurant.Currency, item.DisplayPrice()))
}

func TestParseStaticMenuDefaults(t *testing.T) {
	payload := `{
	  "restaurant": {"name": "Corner Cafe"},
	  "categories": [
	    {"name": "Drinks", "items": [
	      {"name": "Chai", "sizes": [{"name": "Small", "price": 1.5}, {"name": "Large", "price": 2.5}]}
	    ]}
	  ]
	}`

	doc, err := ParseStaticMenu("corner-cafe", []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "INR", doc.Restaurant.Currency)
	assert.True(t, doc.Categories[0].Enabled)

	item := doc.Categories[0].Items[0]
	assert.True(t, item.Available)
	assert.Nil(t, item.Price)
	assert.Equal(t, 1.5, item.DisplayPrice())
}

func TestParseStaticMenuDuplicateNamesGetSuffixedIDs(t *testing.T) {
	payload := `{
	  "restaurant": {"name": "Twins"},
	  "categories": [
	    {"name": "Mains", "items": [
	      {"name": "Thali", "price": 8},
	      {"name": "Thali", "price": 9}
	    ]}
	  ]
	}`

	doc, err := ParseStaticMenu("twins", []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "thali", doc.Categories[0].Items[0].ID)
	assert.Equal(t, "thali-1", doc.Categories[0].Items[1].ID)
}

func TestParseStaticMenuRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `<html>not a menu</html>`},
		{"missing restaurant name", `{"categories": []}`},
		{"item without price or sizes", `{
			"restaurant": {"name": "X"},
			"categories": [{"name": "C", "items": [{"name": "Mystery"}]}]
		}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ParseStaticMenu("x", []byte(testCase.payload))
			assert.Error(t, err)
		})
	}
}
