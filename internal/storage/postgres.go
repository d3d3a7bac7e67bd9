package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"qrmenu/internal/domain"
)

var (
	ErrDuplicateItem    = errors.New("item already exists at destination")
	ErrCategoryNotFound = errors.New("category not found")
)

type MenuStore struct {
	DB *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{DB: db}
}

func (s *MenuStore) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tagline TEXT,
			address TEXT,
			phone TEXT,
			open_hours TEXT,
			logo_url TEXT,
			currency TEXT NOT NULL DEFAULT 'INR',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			sort_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (restaurant_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			restaurant_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC,
			item_type TEXT,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			image_url TEXT,
			sizes JSONB,
			tags JSONB,
			nutrition JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (restaurant_id, category_id, id),
			FOREIGN KEY (restaurant_id, category_id)
				REFERENCES categories(restaurant_id, id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS owners (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS owner_links (
			owner_id TEXT PRIMARY KEY REFERENCES owners(id) ON DELETE CASCADE,
			restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *MenuStore) UpsertRestaurant(rest *domain.Restaurant) error {
	return s.DB.QueryRow(`
		INSERT INTO restaurants (id, name, tagline, address, phone, open_hours, logo_url, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			tagline = EXCLUDED.tagline,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			open_hours = EXCLUDED.open_hours,
			logo_url = EXCLUDED.logo_url,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		rest.ID, rest.Name, rest.Tagline, rest.Address, rest.Phone, rest.OpenHours,
		rest.LogoURL, rest.Currency, rest.CreatedAt, rest.UpdatedAt).
		Scan(&rest.CreatedAt)
}

func (s *MenuStore) GetRestaurant(id string) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := s.DB.QueryRow(`
		SELECT id, name, COALESCE(tagline, ''), COALESCE(address, ''), COALESCE(phone, ''),
		       COALESCE(open_hours, ''), COALESCE(logo_url, ''), currency, created_at, updated_at
		FROM restaurants
		WHERE id = $1`, id).
		Scan(&rest.ID, &rest.Name, &rest.Tagline, &rest.Address, &rest.Phone,
			&rest.OpenHours, &rest.LogoURL, &rest.Currency, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (s *MenuStore) ListCategories(restaurantID string) ([]domain.Category, error) {
	rows, err := s.DB.Query(`
		SELECT restaurant_id, id, name, enabled, sort_order, created_at, updated_at
		FROM categories
		WHERE restaurant_id = $1
		ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.RestaurantID, &cat.ID, &cat.Name, &cat.Enabled, &cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			continue
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func (s *MenuStore) GetCategory(restaurantID, categoryID string) (*domain.Category, error) {
	var cat domain.Category
	err := s.DB.QueryRow(`
		SELECT restaurant_id, id, name, enabled, sort_order, created_at, updated_at
		FROM categories
		WHERE restaurant_id = $1 AND id = $2`, restaurantID, categoryID).
		Scan(&cat.RestaurantID, &cat.ID, &cat.Name, &cat.Enabled, &cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *MenuStore) CreateCategory(cat *domain.Category) error {
	_, err := s.DB.Exec(`
		INSERT INTO categories (restaurant_id, id, name, enabled, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cat.RestaurantID, cat.ID, cat.Name, cat.Enabled, cat.SortOrder, cat.CreatedAt, cat.UpdatedAt)
	return err
}

func (s *MenuStore) UpsertCategory(cat *domain.Category) error {
	_, err := s.DB.Exec(`
		INSERT INTO categories (restaurant_id, id, name, enabled, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (restaurant_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			enabled = EXCLUDED.enabled,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at`,
		cat.RestaurantID, cat.ID, cat.Name, cat.Enabled, cat.SortOrder, cat.CreatedAt, cat.UpdatedAt)
	return err
}

func (s *MenuStore) UpdateCategory(cat *domain.Category) error {
	_, err := s.DB.Exec(`
		UPDATE categories
		SET name=$1, enabled=$2, sort_order=$3, updated_at=$4
		WHERE restaurant_id=$5 AND id=$6`,
		cat.Name, cat.Enabled, cat.SortOrder, cat.UpdatedAt, cat.RestaurantID, cat.ID)
	return err
}

func (s *MenuStore) DeleteCategory(restaurantID, categoryID string) (int64, error) {
	result, err := s.DB.Exec("DELETE FROM categories WHERE restaurant_id=$1 AND id=$2", restaurantID, categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const itemColumns = `restaurant_id, category_id, id, name, COALESCE(description, ''), price,
	COALESCE(item_type, ''), available, COALESCE(image_url, ''), sizes, tags, nutrition, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	var price sql.NullFloat64
	var sizesRaw, tagsRaw, nutritionRaw []byte

	err := row.Scan(&item.RestaurantID, &item.CategoryID, &item.ID, &item.Name, &item.Description,
		&price, &item.Type, &item.Available, &item.ImageURL,
		&sizesRaw, &tagsRaw, &nutritionRaw, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		item.Price = &price.Float64
	}
	if len(sizesRaw) > 0 {
		_ = json.Unmarshal(sizesRaw, &item.Sizes)
	}
	if len(tagsRaw) > 0 {
		_ = json.Unmarshal(tagsRaw, &item.Tags)
	}
	if len(nutritionRaw) > 0 {
		_ = json.Unmarshal(nutritionRaw, &item.Nutrition)
	}
	return &item, nil
}

func itemJSONColumns(item *domain.Item) (sizes, tags, nutrition []byte) {
	if len(item.Sizes) > 0 {
		sizes, _ = json.Marshal(item.Sizes)
	}
	if len(item.Tags) > 0 {
		tags, _ = json.Marshal(item.Tags)
	}
	if len(item.Nutrition) > 0 {
		nutrition, _ = json.Marshal(item.Nutrition)
	}
	return
}

func (s *MenuStore) ListItems(restaurantID, categoryID string) ([]domain.Item, error) {
	rows, err := s.DB.Query(`
		SELECT `+itemColumns+`
		FROM items
		WHERE restaurant_id = $1 AND category_id = $2
		ORDER BY name`, restaurantID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *MenuStore) GetItem(restaurantID, categoryID, itemID string) (*domain.Item, error) {
	row := s.DB.QueryRow(`
		SELECT `+itemColumns+`
		FROM items
		WHERE restaurant_id = $1 AND category_id = $2 AND id = $3`,
		restaurantID, categoryID, itemID)
	return scanItem(row)
}

func (s *MenuStore) CreateItem(item *domain.Item) error {
	sizes, tags, nutrition := itemJSONColumns(item)
	_, err := s.DB.Exec(`
		INSERT INTO items (restaurant_id, category_id, id, name, description, price, item_type, available, image_url, sizes, tags, nutrition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		item.RestaurantID, item.CategoryID, item.ID, item.Name, item.Description, item.Price,
		item.Type, item.Available, item.ImageURL, sizes, tags, nutrition, item.CreatedAt, item.UpdatedAt)
	return err
}

func (s *MenuStore) UpsertItem(item *domain.Item) error {
	sizes, tags, nutrition := itemJSONColumns(item)
	_, err := s.DB.Exec(`
		INSERT INTO items (restaurant_id, category_id, id, name, description, price, item_type, available, image_url, sizes, tags, nutrition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (restaurant_id, category_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			item_type = EXCLUDED.item_type,
			available = EXCLUDED.available,
			image_url = EXCLUDED.image_url,
			sizes = EXCLUDED.sizes,
			tags = EXCLUDED.tags,
			nutrition = EXCLUDED.nutrition,
			updated_at = EXCLUDED.updated_at`,
		item.RestaurantID, item.CategoryID, item.ID, item.Name, item.Description, item.Price,
		item.Type, item.Available, item.ImageURL, sizes, tags, nutrition, item.CreatedAt, item.UpdatedAt)
	return err
}

func (s *MenuStore) UpdateItem(item *domain.Item) error {
	sizes, tags, nutrition := itemJSONColumns(item)
	_, err := s.DB.Exec(`
		UPDATE items
		SET name=$1, description=$2, price=$3, item_type=$4, available=$5, image_url=$6, sizes=$7, tags=$8, nutrition=$9, updated_at=$10
		WHERE restaurant_id=$11 AND category_id=$12 AND id=$13`,
		item.Name, item.Description, item.Price, item.Type, item.Available, item.ImageURL,
		sizes, tags, nutrition, item.UpdatedAt, item.RestaurantID, item.CategoryID, item.ID)
	return err
}

func (s *MenuStore) DeleteItem(restaurantID, categoryID, itemID string) (int64, error) {
	result, err := s.DB.Exec("DELETE FROM items WHERE restaurant_id=$1 AND category_id=$2 AND id=$3",
		restaurantID, categoryID, itemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MoveItem relocates an item between sibling categories: copy to the
// destination, then delete the source, in one transaction. The destination
// must not already hold an item with the same identifier.
func (s *MenuStore) MoveItem(restaurantID, fromCategoryID, toCategoryID, itemID string, now time.Time) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM categories WHERE restaurant_id=$1 AND id=$2)",
		restaurantID, toCategoryID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrCategoryNotFound
	}

	if err := tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM items WHERE restaurant_id=$1 AND category_id=$2 AND id=$3)",
		restaurantID, toCategoryID, itemID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateItem
	}

	result, err := tx.Exec(`
		INSERT INTO items (restaurant_id, category_id, id, name, description, price, item_type, available, image_url, sizes, tags, nutrition, created_at, updated_at)
		SELECT restaurant_id, $1, id, name, description, price, item_type, available, image_url, sizes, tags, nutrition, created_at, $2
		FROM items
		WHERE restaurant_id=$3 AND category_id=$4 AND id=$5`,
		toCategoryID, now, restaurantID, fromCategoryID, itemID)
	if err != nil {
		return err
	}
	copied, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if copied == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec("DELETE FROM items WHERE restaurant_id=$1 AND category_id=$2 AND id=$3",
		restaurantID, fromCategoryID, itemID); err != nil {
		return err
	}

	return tx.Commit()
}

// PruneCategories removes categories of a restaurant that are not in keep.
// Used by the importer when syncing a static file into the store.
func (s *MenuStore) PruneCategories(restaurantID string, keep []string) (int64, error) {
	result, err := s.DB.Exec(
		"DELETE FROM categories WHERE restaurant_id=$1 AND NOT (id = ANY($2))",
		restaurantID, pq.Array(keep))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *MenuStore) PruneItems(restaurantID, categoryID string, keep []string) (int64, error) {
	result, err := s.DB.Exec(
		"DELETE FROM items WHERE restaurant_id=$1 AND category_id=$2 AND NOT (id = ANY($3))",
		restaurantID, categoryID, pq.Array(keep))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *MenuStore) CreateOwner(owner *domain.Owner) error {
	_, err := s.DB.Exec(
		"INSERT INTO owners (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		owner.ID, owner.Email, owner.PasswordHash, owner.CreatedAt)
	return err
}

func (s *MenuStore) GetOwner(id string) (*domain.Owner, error) {
	var owner domain.Owner
	err := s.DB.QueryRow(
		"SELECT id, email, password_hash, created_at FROM owners WHERE id = $1", id).
		Scan(&owner.ID, &owner.Email, &owner.PasswordHash, &owner.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (s *MenuStore) GetOwnerByEmail(email string) (*domain.Owner, error) {
	var owner domain.Owner
	err := s.DB.QueryRow(
		"SELECT id, email, password_hash, created_at FROM owners WHERE email = $1", email).
		Scan(&owner.ID, &owner.Email, &owner.PasswordHash, &owner.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (s *MenuStore) PutLink(link *domain.OwnerLink) error {
	_, err := s.DB.Exec(`
		INSERT INTO owner_links (owner_id, restaurant_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET restaurant_id = EXCLUDED.restaurant_id`,
		link.OwnerID, link.RestaurantID)
	return err
}

func (s *MenuStore) GetLink(ownerID string) (*domain.OwnerLink, error) {
	var link domain.OwnerLink
	err := s.DB.QueryRow(
		"SELECT owner_id, restaurant_id FROM owner_links WHERE owner_id = $1", ownerID).
		Scan(&link.OwnerID, &link.RestaurantID)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *MenuStore) GetOwnerForRestaurant(restaurantID string) (string, error) {
	var ownerID string
	err := s.DB.QueryRow(
		"SELECT owner_id FROM owner_links WHERE restaurant_id = $1", restaurantID).
		Scan(&ownerID)
	if err != nil {
		return "", err
	}
	return ownerID, nil
}
