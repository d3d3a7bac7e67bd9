package service

import (
	"context"
	"time"

	"qrmenu/internal/domain"
)

// MenuRepository is what the menu service needs from persistent storage.
// *storage.MenuStore satisfies it.
type MenuRepository interface {
	UpsertRestaurant(rest *domain.Restaurant) error
	GetRestaurant(id string) (*domain.Restaurant, error)

	ListCategories(restaurantID string) ([]domain.Category, error)
	GetCategory(restaurantID, categoryID string) (*domain.Category, error)
	CreateCategory(cat *domain.Category) error
	UpdateCategory(cat *domain.Category) error
	DeleteCategory(restaurantID, categoryID string) (int64, error)

	ListItems(restaurantID, categoryID string) ([]domain.Item, error)
	GetItem(restaurantID, categoryID, itemID string) (*domain.Item, error)
	CreateItem(item *domain.Item) error
	UpdateItem(item *domain.Item) error
	DeleteItem(restaurantID, categoryID, itemID string) (int64, error)
	MoveItem(restaurantID, fromCategoryID, toCategoryID, itemID string, now time.Time) error

	PutLink(link *domain.OwnerLink) error
	GetLink(ownerID string) (*domain.OwnerLink, error)
	GetOwnerForRestaurant(restaurantID string) (string, error)
}

// MenuCache invalidates cached menu documents after a write.
type MenuCache interface {
	Invalidate(ctx context.Context, restaurantID string) error
}

// EventPublisher pushes menu change events onto the side channel.
// Publishing is best effort; a broker outage never fails a write.
type EventPublisher interface {
	PublishMenuEvent(ctx context.Context, event domain.MenuEvent) error
}

// ChangeNotifier wakes live dashboard subscriptions after a write.
type ChangeNotifier interface {
	Notify(path string)
}

type MenuServiceInterface interface {
	LinkRestaurant(ctx context.Context, ownerID string, in LinkRestaurantInput) (*domain.Restaurant, error)
	RestaurantForOwner(ctx context.Context, ownerID string) (*domain.Restaurant, error)

	CreateCategory(ctx context.Context, restaurantID string, in CreateCategoryInput) (*domain.Category, error)
	RenameCategory(ctx context.Context, restaurantID, categoryID, name string) (*domain.Category, error)
	ToggleCategory(ctx context.Context, restaurantID, categoryID string, enabled bool) (*domain.Category, error)
	SetCategoryOrder(ctx context.Context, restaurantID, categoryID string, order int) (*domain.Category, error)
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error

	CreateItem(ctx context.Context, restaurantID, categoryID string, in CreateItemInput) (*domain.Item, error)
	RenameItem(ctx context.Context, restaurantID, categoryID, itemID, name string) (*domain.Item, error)
	RepriceItem(ctx context.Context, restaurantID, categoryID, itemID string, in RepriceItemInput) (*domain.Item, error)
	SetItemType(ctx context.Context, restaurantID, categoryID, itemID, itemType string) (*domain.Item, error)
	ToggleItemAvailability(ctx context.Context, restaurantID, categoryID, itemID string, available bool) (*domain.Item, error)
	UpdateItemImage(ctx context.Context, restaurantID, categoryID, itemID, imageURL string) (*domain.Item, error)
	DeleteItem(ctx context.Context, restaurantID, categoryID, itemID string) error
	MoveItem(ctx context.Context, restaurantID, fromCategoryID, toCategoryID, itemID string) error
}

// OwnerRepository is what the auth service needs from persistent storage.
// *storage.MenuStore satisfies it.
type OwnerRepository interface {
	CreateOwner(owner *domain.Owner) error
	GetOwnerByEmail(email string) (*domain.Owner, error)
}

type AuthServiceInterface interface {
	Register(email, password string) (*domain.Owner, string, error)
	Login(email, password string) (string, error)
}

// QRGenerator renders a table QR code pointing at the public menu.
type QRGenerator interface {
	MenuURL(restaurantID, table string) string
	Generate(restaurantID, table string) ([]byte, error)
}
