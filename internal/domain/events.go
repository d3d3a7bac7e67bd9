package domain

import "time"

const (
	EventRestaurantLinked = "restaurant_linked"
	EventCategoryCreated  = "category_created"
	EventCategoryRenamed  = "category_renamed"
	EventCategoryToggled  = "category_toggled"
	EventCategoryOrdered  = "category_reordered"
	EventCategoryDeleted  = "category_deleted"
	EventItemCreated      = "item_created"
	EventItemUpdated      = "item_updated"
	EventItemDeleted      = "item_deleted"
	EventItemMoved        = "item_moved"
)

type MenuEvent struct {
	Type         string    `json:"type"`
	RestaurantID string    `json:"restaurant_id"`
	CategoryID   string    `json:"category_id,omitempty"`
	ItemID       string    `json:"item_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
