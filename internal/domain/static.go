package domain

import (
	"encoding/json"
	"fmt"

	"qrmenu/internal/slug"
)

// Static menu.json wire format. Keys are camelCase in the file; optional
// booleans are pointers so an omitted flag defaults to true.

type staticMenu struct {
	Currency   string           `json:"currency"`
	Restaurant staticRestaurant `json:"restaurant"`
	Categories []staticCategory `json:"categories"`
}

type staticRestaurant struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	OpenHours string `json:"openHours"`
	LogoURL   string `json:"logoUrl"`
}

type staticCategory struct {
	Name    string       `json:"name"`
	Enabled *bool        `json:"enabled"`
	Items   []staticItem `json:"items"`
}

type staticItem struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       *float64          `json:"price"`
	Sizes       []SizeVariant     `json:"sizes"`
	Type        string            `json:"type"`
	Available   *bool             `json:"available"`
	Image       string            `json:"image"`
	Tags        []string          `json:"tags"`
	Nutrition   map[string]string `json:"nutrition"`
}

// ParseStaticMenu decodes a menu.json payload into a MenuDocument for the
// given restaurant identifier. Category and item identifiers are derived
// from their names, deduplicated with numeric suffixes, so documents from
// static files are addressable the same way store-backed ones are.
func ParseStaticMenu(restaurantID string, data []byte) (*MenuDocument, error) {
	var raw staticMenu
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse menu.json: %w", err)
	}
	if raw.Restaurant.Name == "" {
		return nil, fmt.Errorf("parse menu.json: restaurant name missing")
	}

	currency := raw.Currency
	if currency == "" {
		currency = "INR"
	}

	doc := &MenuDocument{
		Source: SourceStatic,
		Restaurant: Restaurant{
			ID:        restaurantID,
			Name:      raw.Restaurant.Name,
			Tagline:   raw.Restaurant.Tagline,
			Address:   raw.Restaurant.Address,
			Phone:     raw.Restaurant.Phone,
			OpenHours: raw.Restaurant.OpenHours,
			LogoURL:   raw.Restaurant.LogoURL,
			Currency:  currency,
		},
		Categories: make([]MenuCategory, 0, len(raw.Categories)),
	}

	catIDs := map[string]bool{}
	for ci, rawCat := range raw.Categories {
		if rawCat.Name == "" {
			return nil, fmt.Errorf("parse menu.json: category %d has no name", ci)
		}
		catID := slug.Unique(rawCat.Name, func(s string) bool { return catIDs[s] })
		catIDs[catID] = true

		cat := MenuCategory{
			Key:     catID,
			Name:    rawCat.Name,
			Enabled: rawCat.Enabled == nil || *rawCat.Enabled,
			Items:   make([]Item, 0, len(rawCat.Items)),
		}

		itemIDs := map[string]bool{}
		for ii, rawItem := range rawCat.Items {
			if rawItem.Name == "" {
				return nil, fmt.Errorf("parse menu.json: item %d in %q has no name", ii, rawCat.Name)
			}
			if rawItem.Price == nil && len(rawItem.Sizes) == 0 {
				return nil, fmt.Errorf("parse menu.json: item %q has neither price nor sizes", rawItem.Name)
			}
			itemID := slug.Unique(rawItem.Name, func(s string) bool { return itemIDs[s] })
			itemIDs[itemID] = true

			cat.Items = append(cat.Items, Item{
				ID:           itemID,
				CategoryID:   catID,
				RestaurantID: restaurantID,
				Name:         rawItem.Name,
				Description:  rawItem.Description,
				Price:        rawItem.Price,
				Type:         rawItem.Type,
				Available:    rawItem.Available == nil || *rawItem.Available,
				ImageURL:     rawItem.Image,
				Sizes:        rawItem.Sizes,
				Tags:         rawItem.Tags,
				Nutrition:    rawItem.Nutrition,
			})
		}
		doc.Categories = append(doc.Categories, cat)
	}
	return doc, nil
}
