package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"qrmenu/internal/domain"
)

// placeholderLogo is served inline when a restaurant has no logo anywhere.
const placeholderLogo = "data:image/svg+xml;utf8," +
	"<svg xmlns='http://www.w3.org/2000/svg' width='64' height='64'>" +
	"<rect width='64' height='64' rx='12' fill='%23ececec'/>" +
	"<text x='32' y='40' font-size='14' text-anchor='middle' fill='%23666'>menu</text></svg>"

// LogoURL returns the restaurant-scoped static logo path when the file
// exists under the static dir, and the inline placeholder otherwise.
func LogoURL(staticDir, restaurantID string) string {
	if staticDir != "" {
		logo := filepath.Join(staticDir, "restaurants", restaurantID, "logo.png")
		if _, err := os.Stat(logo); err == nil {
			return "/static/restaurants/" + restaurantID + "/logo.png"
		}
	}
	return placeholderLogo
}

func flat(v float64) *float64 { return &v }

var builtinSamples = map[string]func() *domain.MenuDocument{
	"spice-garden": spiceGardenSample,
}

// BuiltinMenu is the terminal fallback: a known identifier gets its sample,
// anything else gets the default identifier's sample, and a default without
// a sample still yields a renderable empty menu.
func BuiltinMenu(restaurantID, defaultID string) *domain.MenuDocument {
	if sample, ok := builtinSamples[restaurantID]; ok {
		return sample()
	}
	if sample, ok := builtinSamples[defaultID]; ok {
		return sample()
	}
	return &domain.MenuDocument{
		Source: domain.SourceFallback,
		Restaurant: domain.Restaurant{
			ID:       defaultID,
			Name:     titleFromSlug(defaultID),
			Tagline:  "Menu coming soon",
			Currency: "INR",
			LogoURL:  placeholderLogo,
		},
	}
}

func titleFromSlug(id string) string {
	parts := strings.Split(id, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func spiceGardenSample() *domain.MenuDocument {
	return &domain.MenuDocument{
		Source: domain.SourceFallback,
		Restaurant: domain.Restaurant{
			ID:        "spice-garden",
			Name:      "Spice Garden",
			Tagline:   "Authentic Indian Kitchen",
			Address:   "12 MG Road, Bengaluru",
			Phone:     "+91 98765 43210",
			OpenHours: "11:00-23:00",
			Currency:  "INR",
			LogoURL:   placeholderLogo,
		},
		Categories: []domain.MenuCategory{
			{
				Key: "starters", Name: "Starters", Enabled: true,
				Items: []domain.Item{
					{
						ID: "samosa", CategoryID: "starters", RestaurantID: "spice-garden",
						Name: "Samosa", Description: "Crisp pastry with spiced potato filling",
						Price: flat(3.50), Type: domain.TypeVeg, Available: true,
						Tags: []string{"popular"},
					},
					{
						ID: "paneer-tikka", CategoryID: "starters", RestaurantID: "spice-garden",
						Name: "Paneer Tikka", Description: "Char-grilled cottage cheese skewers",
						Price: flat(5.25), Type: domain.TypeVeg, Available: true,
					},
					{
						ID: "chicken-65", CategoryID: "starters", RestaurantID: "spice-garden",
						Name: "Chicken 65", Description: "Fiery fried chicken bites",
						Price: flat(5.75), Type: domain.TypeNonVeg, Available: true,
					},
				},
			},
			{
				Key: "mains", Name: "Mains", Enabled: true,
				Items: []domain.Item{
					{
						ID: "butter-chicken", CategoryID: "mains", RestaurantID: "spice-garden",
						Name: "Butter Chicken", Description: "Tandoori chicken in tomato butter gravy",
						Price: flat(9.50), Type: domain.TypeNonVeg, Available: true,
						Tags: []string{"popular"},
					},
					{
						ID: "dal-makhani", CategoryID: "mains", RestaurantID: "spice-garden",
						Name: "Dal Makhani", Description: "Slow-cooked black lentils",
						Price: flat(7.00), Type: domain.TypeVeg, Available: true,
					},
					{
						ID: "veg-biryani", CategoryID: "mains", RestaurantID: "spice-garden",
						Name: "Veg Biryani", Description: "Fragrant basmati with seasonal vegetables",
						Type: domain.TypeVeg, Available: true,
						Sizes: []domain.SizeVariant{
							{Name: "Half", Price: 5.50},
							{Name: "Full", Price: 8.50},
						},
					},
				},
			},
			{
				Key: "beverages", Name: "Beverages", Enabled: true,
				Items: []domain.Item{
					{
						ID: "masala-chai", CategoryID: "beverages", RestaurantID: "spice-garden",
						Name: "Masala Chai", Description: "Spiced milk tea",
						Type: domain.TypeVeg, Available: true,
						Sizes: []domain.SizeVariant{
							{Name: "Small", Price: 1.50},
							{Name: "Large", Price: 2.50},
						},
					},
					{
						ID: "sweet-lassi", CategoryID: "beverages", RestaurantID: "spice-garden",
						Name: "Sweet Lassi", Description: "Churned yogurt drink",
						Price: flat(2.75), Type: domain.TypeVeg, Available: true,
					},
				},
			},
		},
	}
}
