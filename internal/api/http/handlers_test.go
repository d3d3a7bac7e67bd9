package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/internal/auth"
	"qrmenu/internal/cart"
	"qrmenu/internal/domain"
	"qrmenu/internal/service"
	"qrmenu/internal/storage"
)

// memRepo is an in-memory stand-in for storage.MenuStore, enough for the
// service layer the handlers sit on.
type memRepo struct {
	restaurants map[string]domain.Restaurant
	categories  map[string]map[string]domain.Category
	items       map[string]map[string]map[string]domain.Item
	links       map[string]string
	owners      map[string]domain.Owner
}

func newMemRepo() *memRepo {
	return &memRepo{
		restaurants: make(map[string]domain.Restaurant),
		categories:  make(map[string]map[string]domain.Category),
		items:       make(map[string]map[string]map[string]domain.Item),
		links:       make(map[string]string),
		owners:      make(map[string]domain.Owner),
	}
}

func (r *memRepo) UpsertRestaurant(rest *domain.Restaurant) error {
	r.restaurants[rest.ID] = *rest
	return nil
}

func (r *memRepo) GetRestaurant(id string) (*domain.Restaurant, error) {
	rest, ok := r.restaurants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rest, nil
}

func (r *memRepo) ListCategories(restaurantID string) ([]domain.Category, error) {
	var cats []domain.Category
	for _, cat := range r.categories[restaurantID] {
		cats = append(cats, cat)
	}
	return cats, nil
}

func (r *memRepo) GetCategory(restaurantID, categoryID string) (*domain.Category, error) {
	cat, ok := r.categories[restaurantID][categoryID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &cat, nil
}

func (r *memRepo) CreateCategory(cat *domain.Category) error {
	if r.categories[cat.RestaurantID] == nil {
		r.categories[cat.RestaurantID] = make(map[string]domain.Category)
	}
	r.categories[cat.RestaurantID][cat.ID] = *cat
	return nil
}

func (r *memRepo) UpdateCategory(cat *domain.Category) error {
	if _, ok := r.categories[cat.RestaurantID][cat.ID]; !ok {
		return sql.ErrNoRows
	}
	r.categories[cat.RestaurantID][cat.ID] = *cat
	return nil
}

func (r *memRepo) DeleteCategory(restaurantID, categoryID string) (int64, error) {
	if _, ok := r.categories[restaurantID][categoryID]; !ok {
		return 0, nil
	}
	delete(r.categories[restaurantID], categoryID)
	delete(r.items[restaurantID], categoryID)
	return 1, nil
}

func (r *memRepo) ListItems(restaurantID, categoryID string) ([]domain.Item, error) {
	var items []domain.Item
	for _, item := range r.items[restaurantID][categoryID] {
		items = append(items, item)
	}
	return items, nil
}

func (r *memRepo) GetItem(restaurantID, categoryID, itemID string) (*domain.Item, error) {
	item, ok := r.items[restaurantID][categoryID][itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *memRepo) putItem(item domain.Item) {
	if r.items[item.RestaurantID] == nil {
		r.items[item.RestaurantID] = make(map[string]map[string]domain.Item)
	}
	if r.items[item.RestaurantID][item.CategoryID] == nil {
		r.items[item.RestaurantID][item.CategoryID] = make(map[string]domain.Item)
	}
	r.items[item.RestaurantID][item.CategoryID][item.ID] = item
}

func (r *memRepo) CreateItem(item *domain.Item) error {
	r.putItem(*item)
	return nil
}

func (r *memRepo) UpdateItem(item *domain.Item) error {
	if _, ok := r.items[item.RestaurantID][item.CategoryID][item.ID]; !ok {
		return sql.ErrNoRows
	}
	r.putItem(*item)
	return nil
}

func (r *memRepo) DeleteItem(restaurantID, categoryID, itemID string) (int64, error) {
	if _, ok := r.items[restaurantID][categoryID][itemID]; !ok {
		return 0, nil
	}
	delete(r.items[restaurantID][categoryID], itemID)
	return 1, nil
}

func (r *memRepo) MoveItem(restaurantID, fromCategoryID, toCategoryID, itemID string, now time.Time) error {
	if _, ok := r.categories[restaurantID][toCategoryID]; !ok {
		return storage.ErrCategoryNotFound
	}
	if _, ok := r.items[restaurantID][toCategoryID][itemID]; ok {
		return storage.ErrDuplicateItem
	}
	item, ok := r.items[restaurantID][fromCategoryID][itemID]
	if !ok {
		return sql.ErrNoRows
	}
	item.CategoryID = toCategoryID
	item.UpdatedAt = now
	r.putItem(item)
	delete(r.items[restaurantID][fromCategoryID], itemID)
	return nil
}

func (r *memRepo) PutLink(link *domain.OwnerLink) error {
	r.links[link.OwnerID] = link.RestaurantID
	return nil
}

func (r *memRepo) GetLink(ownerID string) (*domain.OwnerLink, error) {
	restaurantID, ok := r.links[ownerID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.OwnerLink{OwnerID: ownerID, RestaurantID: restaurantID}, nil
}

func (r *memRepo) GetOwnerForRestaurant(restaurantID string) (string, error) {
	for ownerID, linked := range r.links {
		if linked == restaurantID {
			return ownerID, nil
		}
	}
	return "", sql.ErrNoRows
}

func (r *memRepo) CreateOwner(owner *domain.Owner) error {
	r.owners[owner.Email] = *owner
	return nil
}

func (r *memRepo) GetOwnerByEmail(email string) (*domain.Owner, error) {
	owner, ok := r.owners[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &owner, nil
}

// fixedResolver always serves the same document and records the id that
// was asked for.
type fixedResolver struct {
	doc  *domain.MenuDocument
	last *string
}

func (f fixedResolver) Resolve(_ context.Context, restaurantID string) *domain.MenuDocument {
	if f.last != nil {
		*f.last = restaurantID
	}
	return f.doc
}

type fakeStats struct{}

func (fakeStats) GetStats(_ context.Context, _ string) (map[string]string, error) {
	return map[string]string{"edits": "12", "last_edit_type": "item_updated"}, nil
}

func (fakeStats) DailyEdits(_ context.Context, _ string, _ time.Time) (float64, error) {
	return 3, nil
}

func sampleMenu() *domain.MenuDocument {
	flat := func(v float64) *float64 { return &v }
	return &domain.MenuDocument{
		Source: "store",
		Restaurant: domain.Restaurant{
			ID: "spice-garden", Name: "Spice Garden", Currency: "INR",
		},
		Categories: []domain.MenuCategory{
			{
				Key: "starters", Name: "Starters", Enabled: true,
				Items: []domain.Item{
					{ID: "samosa", Name: "Samosa", Price: flat(3.5), Type: domain.TypeVeg, Available: true},
					{ID: "mystery", Name: "Mystery Dish", Price: flat(2), Available: false},
					{ID: "pizza", Name: "Tandoori Pizza", Available: true, Sizes: []domain.SizeVariant{
						{Name: "Small", Price: 8},
						{Name: "Large", Price: 12},
					}},
				},
			},
			{Key: "secret", Name: "Secret Menu", Enabled: false},
		},
	}
}

type testEnv struct {
	handler  *Handler
	repo     *memRepo
	tokens   *auth.TokenManager
	resolved *string
}

func newTestEnv() *testEnv {
	repo := newMemRepo()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	resolved := new(string)
	handler := &Handler{
		Resolver:  fixedResolver{doc: sampleMenu(), last: resolved},
		Menus:     service.NewMenuService(repo, nil, nil, nil),
		Auth:      service.NewAuthService(repo, tokens),
		QR:        service.NewQRGenerator("http://localhost:8080"),
		Carts:     cart.NewSessionStore(time.Hour),
		Stats:     fakeStats{},
		Tokens:    tokens,
		DefaultID: "spice-garden",
	}
	return &testEnv{handler: handler, repo: repo, tokens: tokens, resolved: resolved}
}

func (e *testEnv) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r := mux.NewRouter()
	e.handler.RegisterRoutes(r)
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()
	w := env.do("GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestGetMenuServesDinerView(t *testing.T) {
	env := newTestEnv()
	w := env.do("GET", "/api/menu/spice-garden", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc domain.MenuDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "spice-garden", doc.Restaurant.ID)
	// the disabled category is dropped, unavailable items stay listed
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "starters", doc.Categories[0].Key)
	assert.Len(t, doc.Categories[0].Items, 3)
	assert.Equal(t, "spice-garden", *env.resolved)
}

func TestGetDefaultMenuExtractsRestaurant(t *testing.T) {
	env := newTestEnv()

	scanned := url.QueryEscape("https://menus.example.com/menu?r=corner-cafe&table=4")
	w := env.do("GET", "/api/menu?url="+scanned, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "corner-cafe", *env.resolved)

	w = env.do("GET", "/api/menu?r=dhaba-junction", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dhaba-junction", *env.resolved)

	w = env.do("GET", "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spice-garden", *env.resolved)
}

func TestGetQRCode(t *testing.T) {
	env := newTestEnv()
	w := env.do("GET", "/api/restaurants/spice-garden/qrcode?table=5", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/auth/register", "", map[string]string{
		"email": "owner@example.com", "password": "letmein-please",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	w = env.do("POST", "/api/auth/register", "", map[string]string{
		"email": "owner@example.com", "password": "letmein-please",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do("POST", "/api/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "letmein-please",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = env.do("POST", "/api/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/auth/register", "", map[string]string{
		"email": "bad-email", "password": "letmein-please",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/cart", "", map[string]string{"table": "7"})
	require.Equal(t, http.StatusCreated, w.Code)
	cartID := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, cartID)

	// adding the same line twice increments its quantity
	w = env.do("POST", "/api/cart/"+cartID+"/items", "", map[string]string{"item_id": "samosa"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do("POST", "/api/cart/"+cartID+"/items", "", map[string]string{"item_id": "samosa"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.0, decodeBody(t, w)["total"])

	w = env.do("POST", "/api/cart/"+cartID+"/items", "", map[string]interface{}{"item_id": "pizza", "size": "Large"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 19.0, decodeBody(t, w)["total"])

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
	}{
		{name: "unknown item", body: map[string]interface{}{"item_id": "ghost"}, wantCode: http.StatusNotFound},
		{name: "unavailable item", body: map[string]interface{}{"item_id": "mystery"}, wantCode: http.StatusBadRequest},
		{name: "sized item without size", body: map[string]interface{}{"item_id": "pizza"}, wantCode: http.StatusBadRequest},
		{name: "unknown size", body: map[string]interface{}{"item_id": "pizza", "size": "XL"}, wantCode: http.StatusBadRequest},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := env.do("POST", "/api/cart/"+cartID+"/items", "", testCase.body)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}

	w = env.do("GET", "/api/cart/"+cartID+"/summary", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	want := "Order - Spice Garden\nTable: 7\n\n2 x Samosa - ₹7.00\n1 x Tandoori Pizza (Large) - ₹12.00\n\nTotal: ₹19.00\n"
	assert.Equal(t, want, w.Body.String())

	// adjust the pizza line away
	w = env.do("PATCH", "/api/cart/"+cartID+"/items", "", map[string]interface{}{"item_id": "pizza", "size": "Large", "delta": -1})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["removed"])
	assert.Equal(t, 7.0, body["total"])

	w = env.do("DELETE", "/api/cart/"+cartID+"/items?item_id=samosa", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("GET", "/api/cart/"+cartID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeBody(t, w)["total"])

	w = env.do("DELETE", "/api/cart/"+cartID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCartNotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/cart/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/cart/nope/items", "", map[string]string{"item_id": "samosa"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/cart", "", map[string]string{})
	require.Equal(t, http.StatusCreated, w.Code)
	cartID := decodeBody(t, w)["id"].(string)

	w = env.do("PATCH", "/api/cart/"+cartID+"/items", "", map[string]interface{}{"item_id": "samosa", "delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
