package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"qrmenu/internal/domain"
	"qrmenu/internal/slug"
	"qrmenu/internal/sync"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrNotLinked       = errors.New("owner has no restaurant linked")
	ErrRestaurantTaken = errors.New("restaurant already linked to another owner")
)

var validate = validator.New()

type LinkRestaurantInput struct {
	RestaurantID string `json:"restaurant_id" validate:"omitempty,min=2,max=64"`
	Name         string `json:"name" validate:"required,min=2,max=120"`
	Tagline      string `json:"tagline" validate:"max=200"`
	Address      string `json:"address" validate:"max=300"`
	Phone        string `json:"phone" validate:"max=40"`
	OpenHours    string `json:"open_hours" validate:"max=120"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
	Currency     string `json:"currency" validate:"omitempty,alpha,len=3"`
}

type CreateCategoryInput struct {
	Name      string `json:"name" validate:"required,min=1,max=80"`
	Enabled   *bool  `json:"enabled"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,min=0"`
}

type CreateItemInput struct {
	Name        string               `json:"name" validate:"required,min=1,max=120"`
	Description string               `json:"description" validate:"max=500"`
	Price       *float64             `json:"price"`
	Sizes       []domain.SizeVariant `json:"sizes"`
	Type        string               `json:"type" validate:"omitempty,oneof=veg non-veg"`
	Available   *bool                `json:"available"`
	ImageURL    string               `json:"image" validate:"omitempty,url"`
	Tags        []string             `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
	Nutrition   map[string]string    `json:"nutrition"`
}

// RepriceItemInput replaces an item's price shape wholesale: a flat price,
// size variants, or both.
type RepriceItemInput struct {
	Price *float64             `json:"price"`
	Sizes []domain.SizeVariant `json:"sizes"`
}

// MenuService owns every menu mutation: it validates input, writes through
// the repository, invalidates the cached menu document, publishes a change
// event and wakes live dashboard subscriptions.
type MenuService struct {
	repo      MenuRepository
	cache     MenuCache
	publisher EventPublisher
	notifier  ChangeNotifier
}

var _ MenuServiceInterface = (*MenuService)(nil)

func NewMenuService(repo MenuRepository, cache MenuCache, publisher EventPublisher, notifier ChangeNotifier) *MenuService {
	return &MenuService{repo: repo, cache: cache, publisher: publisher, notifier: notifier}
}

func (s *MenuService) LinkRestaurant(ctx context.Context, ownerID string, in LinkRestaurantInput) (*domain.Restaurant, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	id := in.RestaurantID
	if id == "" {
		id = slug.Make(in.Name)
	}

	currentOwner, err := s.repo.GetOwnerForRestaurant(id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && currentOwner != ownerID {
		return nil, ErrRestaurantTaken
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "INR"
	}
	now := time.Now()
	rest := &domain.Restaurant{
		ID:        id,
		Name:      in.Name,
		Tagline:   in.Tagline,
		Address:   in.Address,
		Phone:     in.Phone,
		OpenHours: in.OpenHours,
		LogoURL:   in.LogoURL,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertRestaurant(rest); err != nil {
		return nil, err
	}
	if err := s.repo.PutLink(&domain.OwnerLink{OwnerID: ownerID, RestaurantID: id}); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventRestaurantLinked, id, "", ""), sync.CategoriesPath(id))
	return rest, nil
}

func (s *MenuService) RestaurantForOwner(ctx context.Context, ownerID string) (*domain.Restaurant, error) {
	link, err := s.repo.GetLink(ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, err
	}
	rest, err := s.repo.GetRestaurant(link.RestaurantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rest, err
}

func (s *MenuService) CreateCategory(ctx context.Context, restaurantID string, in CreateCategoryInput) (*domain.Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	existing, err := s.repo.ListCategories(restaurantID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, cat := range existing {
		taken[cat.ID] = true
	}

	now := time.Now()
	cat := &domain.Category{
		ID:           slug.Unique(in.Name, func(id string) bool { return taken[id] }),
		RestaurantID: restaurantID,
		Name:         in.Name,
		Enabled:      true,
		SortOrder:    len(existing),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Enabled != nil {
		cat.Enabled = *in.Enabled
	}
	if in.SortOrder != nil {
		cat.SortOrder = *in.SortOrder
	}
	if err := s.repo.CreateCategory(cat); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventCategoryCreated, restaurantID, cat.ID, ""), sync.CategoriesPath(restaurantID))
	return cat, nil
}

func (s *MenuService) RenameCategory(ctx context.Context, restaurantID, categoryID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	cat, err := s.category(restaurantID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.Name == name {
		return cat, nil
	}
	cat.Name = name
	cat.UpdatedAt = time.Now()
	if err := s.repo.UpdateCategory(cat); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventCategoryRenamed, restaurantID, categoryID, ""), sync.CategoriesPath(restaurantID))
	return cat, nil
}

// ToggleCategory applies the desired enabled state. Applying the state the
// category already has is a no-op, so mirrored toggles from several
// dashboard tabs collapse into one effective write.
func (s *MenuService) ToggleCategory(ctx context.Context, restaurantID, categoryID string, enabled bool) (*domain.Category, error) {
	cat, err := s.category(restaurantID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.Enabled == enabled {
		return cat, nil
	}
	cat.Enabled = enabled
	cat.UpdatedAt = time.Now()
	if err := s.repo.UpdateCategory(cat); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventCategoryToggled, restaurantID, categoryID, ""), sync.CategoriesPath(restaurantID))
	return cat, nil
}

func (s *MenuService) SetCategoryOrder(ctx context.Context, restaurantID, categoryID string, order int) (*domain.Category, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: sort order must not be negative", ErrValidation)
	}
	cat, err := s.category(restaurantID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.SortOrder == order {
		return cat, nil
	}
	cat.SortOrder = order
	cat.UpdatedAt = time.Now()
	if err := s.repo.UpdateCategory(cat); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventCategoryOrdered, restaurantID, categoryID, ""), sync.CategoriesPath(restaurantID))
	return cat, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	rows, err := s.repo.DeleteCategory(restaurantID, categoryID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.afterWrite(ctx, menuEvent(domain.EventCategoryDeleted, restaurantID, categoryID, ""),
		sync.CategoriesPath(restaurantID), sync.ItemsPath(restaurantID, categoryID))
	return nil
}

func (s *MenuService) CreateItem(ctx context.Context, restaurantID, categoryID string, in CreateItemInput) (*domain.Item, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validatePricing(in.Price, in.Sizes); err != nil {
		return nil, err
	}
	if _, err := s.category(restaurantID, categoryID); err != nil {
		return nil, err
	}
	existing, err := s.repo.ListItems(restaurantID, categoryID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, item := range existing {
		taken[item.ID] = true
	}

	now := time.Now()
	item := &domain.Item{
		ID:           slug.Unique(in.Name, func(id string) bool { return taken[id] }),
		CategoryID:   categoryID,
		RestaurantID: restaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Type:         in.Type,
		Available:    true,
		ImageURL:     in.ImageURL,
		Sizes:        in.Sizes,
		Tags:         in.Tags,
		Nutrition:    in.Nutrition,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if err := s.repo.CreateItem(item); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventItemCreated, restaurantID, categoryID, item.ID), sync.ItemsPath(restaurantID, categoryID))
	return item, nil
}

func (s *MenuService) RenameItem(ctx context.Context, restaurantID, categoryID, itemID, name string) (*domain.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	item, err := s.item(restaurantID, categoryID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Name == name {
		return item, nil
	}
	item.Name = name
	return s.updateItem(ctx, item)
}

func (s *MenuService) RepriceItem(ctx context.Context, restaurantID, categoryID, itemID string, in RepriceItemInput) (*domain.Item, error) {
	if err := validatePricing(in.Price, in.Sizes); err != nil {
		return nil, err
	}
	item, err := s.item(restaurantID, categoryID, itemID)
	if err != nil {
		return nil, err
	}
	item.Price = in.Price
	item.Sizes = in.Sizes
	return s.updateItem(ctx, item)
}

func (s *MenuService) SetItemType(ctx context.Context, restaurantID, categoryID, itemID, itemType string) (*domain.Item, error) {
	if itemType != "" && itemType != domain.TypeVeg && itemType != domain.TypeNonVeg {
		return nil, fmt.Errorf("%w: item type must be %q or %q", ErrValidation, domain.TypeVeg, domain.TypeNonVeg)
	}
	item, err := s.item(restaurantID, categoryID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Type == itemType {
		return item, nil
	}
	item.Type = itemType
	return s.updateItem(ctx, item)
}

// ToggleItemAvailability marks an item sold out or back on. Like category
// toggles, re-applying the current state writes nothing.
func (s *MenuService) ToggleItemAvailability(ctx context.Context, restaurantID, categoryID, itemID string, available bool) (*domain.Item, error) {
	item, err := s.item(restaurantID, categoryID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Available == available {
		return item, nil
	}
	item.Available = available
	return s.updateItem(ctx, item)
}

func (s *MenuService) UpdateItemImage(ctx context.Context, restaurantID, categoryID, itemID, imageURL string) (*domain.Item, error) {
	if imageURL != "" {
		if err := validate.Var(imageURL, "url"); err != nil {
			return nil, fmt.Errorf("%w: image must be a URL", ErrValidation)
		}
	}
	item, err := s.item(restaurantID, categoryID, itemID)
	if err != nil {
		return nil, err
	}
	if item.ImageURL == imageURL {
		return item, nil
	}
	item.ImageURL = imageURL
	return s.updateItem(ctx, item)
}

func (s *MenuService) DeleteItem(ctx context.Context, restaurantID, categoryID, itemID string) error {
	rows, err := s.repo.DeleteItem(restaurantID, categoryID, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.afterWrite(ctx, menuEvent(domain.EventItemDeleted, restaurantID, categoryID, itemID), sync.ItemsPath(restaurantID, categoryID))
	return nil
}

// MoveItem relocates an item to another category in one transaction: the
// repository checks the destination for a duplicate id and leaves the
// source untouched when anything fails.
func (s *MenuService) MoveItem(ctx context.Context, restaurantID, fromCategoryID, toCategoryID, itemID string) error {
	if fromCategoryID == toCategoryID {
		return fmt.Errorf("%w: item is already in that category", ErrValidation)
	}
	err := s.repo.MoveItem(restaurantID, fromCategoryID, toCategoryID, itemID, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.afterWrite(ctx, menuEvent(domain.EventItemMoved, restaurantID, toCategoryID, itemID),
		sync.ItemsPath(restaurantID, fromCategoryID), sync.ItemsPath(restaurantID, toCategoryID))
	return nil
}

func (s *MenuService) category(restaurantID, categoryID string) (*domain.Category, error) {
	cat, err := s.repo.GetCategory(restaurantID, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return cat, err
}

func (s *MenuService) item(restaurantID, categoryID, itemID string) (*domain.Item, error) {
	item, err := s.repo.GetItem(restaurantID, categoryID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (s *MenuService) updateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	item.UpdatedAt = time.Now()
	if err := s.repo.UpdateItem(item); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, menuEvent(domain.EventItemUpdated, item.RestaurantID, item.CategoryID, item.ID),
		sync.ItemsPath(item.RestaurantID, item.CategoryID))
	return item, nil
}

// afterWrite runs the side effects of a successful mutation. Cache and
// publish failures are logged, never surfaced: the write already landed.
func (s *MenuService) afterWrite(ctx context.Context, event domain.MenuEvent, paths ...string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, event.RestaurantID); err != nil {
			log.Printf("[menu] cache invalidate failed for %s: %v", event.RestaurantID, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishMenuEvent(ctx, event); err != nil {
			log.Printf("[menu] publish %s failed: %v", event.Type, err)
		}
	}
	if s.notifier != nil {
		for _, path := range paths {
			s.notifier.Notify(path)
		}
	}
}

func menuEvent(eventType, restaurantID, categoryID, itemID string) domain.MenuEvent {
	return domain.MenuEvent{
		Type:         eventType,
		RestaurantID: restaurantID,
		CategoryID:   categoryID,
		ItemID:       itemID,
		Timestamp:    time.Now(),
	}
}

func validateInput(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validatePricing(price *float64, sizes []domain.SizeVariant) error {
	if price == nil && len(sizes) == 0 {
		return fmt.Errorf("%w: an item needs a price or at least one size", ErrValidation)
	}
	if price != nil && !validPrice(*price) {
		return fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}
	seen := make(map[string]bool, len(sizes))
	for _, size := range sizes {
		if strings.TrimSpace(size.Name) == "" {
			return fmt.Errorf("%w: every size needs a name", ErrValidation)
		}
		if !validPrice(size.Price) {
			return fmt.Errorf("%w: size %q price must be a non-negative number", ErrValidation, size.Name)
		}
		if seen[size.Name] {
			return fmt.Errorf("%w: duplicate size %q", ErrValidation, size.Name)
		}
		seen[size.Name] = true
	}
	return nil
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
