package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"

	"qrmenu/internal/auth"
	"qrmenu/internal/domain"
	"qrmenu/internal/slug"
)

// Repository is the slice of the store the seeder writes through.
type Repository interface {
	UpsertRestaurant(rest *domain.Restaurant) error
	UpsertCategory(cat *domain.Category) error
	UpsertItem(item *domain.Item) error
	CreateOwner(owner *domain.Owner) error
	PutLink(link *domain.OwnerLink) error
}

// Credential is a demo owner login created alongside a restaurant.
type Credential struct {
	Email        string
	Password     string
	RestaurantID string
}

// Result sums up one seeding run.
type Result struct {
	Restaurants int
	Categories  int
	Items       int
	Owners      []Credential
}

// Seeder fills the store with plausible demo restaurants, each with a
// linked owner account. The same seed value yields the same data.
type Seeder struct {
	repo     Repository
	password string
	fake     faker.Faker
	rng      *rand.Rand
}

const defaultPassword = "demo1234"

func NewSeeder(repo Repository, seedValue int64, password string) *Seeder {
	if password == "" {
		password = defaultPassword
	}
	return &Seeder{
		repo:     repo,
		password: password,
		fake:     faker.NewWithSeed(rand.NewSource(seedValue)),
		rng:      rand.New(rand.NewSource(seedValue)),
	}
}

// Menu pools, one per cuisine. Slices rather than maps so a fixed seed
// walks them in a fixed order.

type categoryPool struct {
	name  string
	items []string
}

type cuisinePool struct {
	name       string
	categories []categoryPool
}

var cuisines = []cuisinePool{
	{"Indian", []categoryPool{
		{"Starters", []string{"Samosa", "Paneer Tikka", "Hara Bhara Kebab", "Chicken 65"}},
		{"Mains", []string{"Butter Chicken", "Palak Paneer", "Chicken Biryani", "Dal Makhani", "Rogan Josh"}},
		{"Breads", []string{"Butter Naan", "Tandoori Roti", "Garlic Naan"}},
		{"Desserts", []string{"Gulab Jamun", "Kheer", "Rasmalai"}},
	}},
	{"Italian", []categoryPool{
		{"Antipasti", []string{"Bruschetta", "Caprese Salad", "Arancini"}},
		{"Pizza", []string{"Margherita", "Pepperoni", "Quattro Formaggi", "Diavola"}},
		{"Pasta", []string{"Spaghetti Carbonara", "Penne Arrabbiata", "Lasagna"}},
		{"Dolci", []string{"Tiramisu", "Panna Cotta"}},
	}},
	{"Chinese", []categoryPool{
		{"Dim Sum", []string{"Pork Dumplings", "Spring Rolls", "Bao Buns"}},
		{"Mains", []string{"Kung Pao Chicken", "Mapo Tofu", "Sweet and Sour Pork", "Fried Rice"}},
		{"Noodles", []string{"Chow Mein", "Dan Dan Noodles"}},
		{"Desserts", []string{"Mango Pudding", "Sesame Balls"}},
	}},
	{"Mexican", []categoryPool{
		{"Antojitos", []string{"Guacamole", "Nachos", "Elote"}},
		{"Tacos", []string{"Carne Asada Taco", "Al Pastor Taco", "Fish Taco", "Veggie Taco"}},
		{"Mains", []string{"Chicken Burrito", "Enchiladas", "Quesadilla"}},
		{"Postres", []string{"Churros", "Flan"}},
	}},
	{"Cafe", []categoryPool{
		{"Drinks", []string{"Masala Chai", "Cold Coffee", "Fresh Lime Soda", "Espresso"}},
		{"Sandwiches", []string{"Grilled Cheese", "Club Sandwich", "Paneer Wrap"}},
		{"Bakes", []string{"Chocolate Brownie", "Blueberry Muffin", "Banana Bread"}},
	}},
}

var openHoursPool = []string{
	"9am - 10pm",
	"11am - 11pm",
	"8am - 8pm",
	"12pm - midnight",
}

var tagPool = []string{"spicy", "chef-special", "bestseller", "new", "gluten-free"}

var nonVegWords = []string{"chicken", "pork", "fish", "beef", "carne", "pepperoni", "pastor", "carbonara"}

// Run creates count restaurants with menus, owners and owner links.
func (s *Seeder) Run(count int) (*Result, error) {
	if count < 1 {
		return nil, fmt.Errorf("seed count must be at least 1, got %d", count)
	}

	hash, err := auth.HashPassword(s.password)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	result := &Result{}
	usedIDs := map[string]bool{}
	now := time.Now()

	for i := 0; i < count; i++ {
		pool := cuisines[s.rng.Intn(len(cuisines))]

		name := s.fake.Company().Name()
		id := slug.Unique(name, func(v string) bool { return usedIDs[v] })
		usedIDs[id] = true

		rest := &domain.Restaurant{
			ID:        id,
			Name:      name,
			Tagline:   fmt.Sprintf("%s kitchen, straight to your table", pool.name),
			Address:   s.fake.Address().City(),
			Phone:     s.fake.Phone().Number(),
			OpenHours: openHoursPool[s.rng.Intn(len(openHoursPool))],
			LogoURL:   s.fake.Internet().URL(),
			Currency:  "INR",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.UpsertRestaurant(rest); err != nil {
			return nil, fmt.Errorf("seed restaurant %s: %w", id, err)
		}
		result.Restaurants++

		if err := s.seedMenu(rest.ID, pool, now, result); err != nil {
			return nil, err
		}

		cred, err := s.seedOwner(rest.ID, hash, now)
		if err != nil {
			return nil, err
		}
		result.Owners = append(result.Owners, *cred)
	}
	return result, nil
}

func (s *Seeder) seedMenu(restaurantID string, pool cuisinePool, now time.Time, result *Result) error {
	for sortOrder, catPool := range pool.categories {
		catID := slug.Make(catPool.name)
		cat := &domain.Category{
			ID:           catID,
			RestaurantID: restaurantID,
			Name:         catPool.name,
			Enabled:      true,
			SortOrder:    sortOrder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.UpsertCategory(cat); err != nil {
			return fmt.Errorf("seed category %s/%s: %w", restaurantID, catID, err)
		}
		result.Categories++

		for _, itemName := range catPool.items {
			item := s.buildItem(restaurantID, catID, itemName, now)
			if err := s.repo.UpsertItem(item); err != nil {
				return fmt.Errorf("seed item %s/%s/%s: %w", restaurantID, catID, item.ID, err)
			}
			result.Items++
		}
	}
	return nil
}

func (s *Seeder) buildItem(restaurantID, categoryID, name string, now time.Time) *domain.Item {
	price := round2(s.fake.Float64(2, 2, 18))
	item := &domain.Item{
		ID:           slug.Make(name),
		CategoryID:   categoryID,
		RestaurantID: restaurantID,
		Name:         name,
		Description:  s.fake.Lorem().Sentence(8),
		Price:        &price,
		Type:         itemType(name),
		Available:    s.rng.Intn(10) != 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// roughly a quarter of items come in sizes; the flat price stays the
	// cheapest size so list views agree with the size picker
	if s.rng.Intn(4) == 0 {
		item.Sizes = []domain.SizeVariant{
			{Name: "Small", Price: price},
			{Name: "Regular", Price: round2(price * 1.3)},
			{Name: "Large", Price: round2(price * 1.6)},
		}
	}

	for _, tag := range tagPool {
		if s.rng.Intn(6) == 0 {
			item.Tags = append(item.Tags, tag)
		}
	}
	if s.rng.Intn(3) == 0 {
		item.Nutrition = map[string]string{
			"kcal": strconv.Itoa(s.rng.Intn(600) + 120),
		}
	}
	return item
}

func (s *Seeder) seedOwner(restaurantID, passwordHash string, now time.Time) (*Credential, error) {
	owner := &domain.Owner{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("owner@%s.example.com", restaurantID),
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := s.repo.CreateOwner(owner); err != nil {
		return nil, fmt.Errorf("seed owner for %s: %w", restaurantID, err)
	}
	if err := s.repo.PutLink(&domain.OwnerLink{OwnerID: owner.ID, RestaurantID: restaurantID}); err != nil {
		return nil, fmt.Errorf("link owner for %s: %w", restaurantID, err)
	}
	return &Credential{
		Email:        owner.Email,
		Password:     s.password,
		RestaurantID: restaurantID,
	}, nil
}

func itemType(name string) string {
	lower := strings.ToLower(name)
	for _, word := range nonVegWords {
		if strings.Contains(lower, word) {
			return "non-veg"
		}
	}
	return "veg"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
