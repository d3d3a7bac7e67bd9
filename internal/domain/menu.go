package domain

import "time"

const (
	SourceStore    = "store"
	SourceStatic   = "static"
	SourceFallback = "fallback"
)

const (
	TypeVeg    = "veg"
	TypeNonVeg = "non-veg"
)

type Restaurant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tagline   string    `json:"tagline,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	OpenHours string    `json:"open_hours,omitempty"`
	LogoURL   string    `json:"logo_url,omitempty"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Enabled      bool      `json:"enabled"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SizeVariant struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Item struct {
	ID           string            `json:"id"`
	CategoryID   string            `json:"category_id"`
	RestaurantID string            `json:"restaurant_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Price        *float64          `json:"price,omitempty"`
	Type         string            `json:"type,omitempty"`
	Available    bool              `json:"available"`
	ImageURL     string            `json:"image,omitempty"`
	Sizes        []SizeVariant     `json:"sizes,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Nutrition    map[string]string `json:"nutrition,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type Owner struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type OwnerLink struct {
	OwnerID      string `json:"owner_id"`
	RestaurantID string `json:"restaurant_id"`
}

// MenuCategory is a category as assembled into a menu document, keyed by
// its normalized grouping key so clients can address it without the name.
type MenuCategory struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Items   []Item `json:"items"`
}

// MenuDocument is the full menu for one restaurant as served to clients,
// tagged with the source it was resolved from.
type MenuDocument struct {
	Source     string         `json:"source"`
	Restaurant Restaurant     `json:"restaurant"`
	Categories []MenuCategory `json:"categories"`
}

// FindItem looks an item up across all categories of the document.
func (d *MenuDocument) FindItem(itemID string) (*Item, bool) {
	for ci := range d.Categories {
		for ii := range d.Categories[ci].Items {
			if d.Categories[ci].Items[ii].ID == itemID {
				return &d.Categories[ci].Items[ii], true
			}
		}
	}
	return nil, false
}

// DinerView returns a copy of the document with disabled categories
// removed. Unavailable items stay listed so the client can grey them out;
// adding them to a cart is rejected elsewhere.
func (d *MenuDocument) DinerView() *MenuDocument {
	out := &MenuDocument{
		Source:     d.Source,
		Restaurant: d.Restaurant,
		Categories: make([]MenuCategory, 0, len(d.Categories)),
	}
	for _, cat := range d.Categories {
		if !cat.Enabled {
			continue
		}
		copied := cat
		copied.Items = append([]Item(nil), cat.Items...)
		out.Categories = append(out.Categories, copied)
	}
	return out
}
