package resolver

import (
	"context"
	"log"
	"strings"

	"qrmenu/internal/domain"
)

// Source is one place a menu can come from. Fetch returns (nil, nil) for a
// clean miss and an error for a failed attempt; the resolver treats both the
// same way and moves on to the next source.
type Source interface {
	Name() string
	Fetch(ctx context.Context, restaurantID string) (*domain.MenuDocument, error)
}

type MenuStore interface {
	GetRestaurant(id string) (*domain.Restaurant, error)
	ListCategories(restaurantID string) ([]domain.Category, error)
	ListItems(restaurantID, categoryID string) ([]domain.Item, error)
}

type MenuCache interface {
	GetMenu(ctx context.Context, restaurantID string) (*domain.MenuDocument, error)
	SetMenu(ctx context.Context, doc *domain.MenuDocument) error
}

// Resolver walks its sources in order and falls back to the built-in sample
// menu, so resolving never fails: every identifier yields a document.
type Resolver struct {
	Sources   []Source
	Cache     MenuCache
	StaticDir string
	DefaultID string
}

func New(cache MenuCache, defaultID, staticDir string, sources ...Source) *Resolver {
	return &Resolver{
		Sources:   sources,
		Cache:     cache,
		StaticDir: staticDir,
		DefaultID: defaultID,
	}
}

func (r *Resolver) Resolve(ctx context.Context, restaurantID string) *domain.MenuDocument {
	id := strings.TrimSpace(restaurantID)
	if id == "" {
		id = r.DefaultID
	}

	if r.Cache != nil {
		doc, err := r.Cache.GetMenu(ctx, id)
		if err != nil {
			log.Printf("[resolver] cache read for %q failed: %v", id, err)
		} else if doc != nil {
			return doc
		}
	}

	for _, source := range r.Sources {
		doc, err := source.Fetch(ctx, id)
		if err != nil {
			log.Printf("[resolver] %s source failed for %q: %v", source.Name(), id, err)
			continue
		}
		if doc == nil {
			continue
		}
		if doc.Restaurant.LogoURL == "" {
			doc.Restaurant.LogoURL = LogoURL(r.StaticDir, id)
		}
		if doc.Source == domain.SourceStore && r.Cache != nil {
			if err := r.Cache.SetMenu(ctx, doc); err != nil {
				log.Printf("[resolver] cache write for %q failed: %v", id, err)
			}
		}
		return doc
	}

	return BuiltinMenu(id, r.DefaultID)
}

// StoreSource assembles a document from the authoritative store. A
// restaurant with no categories or no items at all counts as a miss so the
// static sources still get a chance.
type StoreSource struct {
	Store MenuStore
}

func (s *StoreSource) Name() string { return "store" }

func (s *StoreSource) Fetch(ctx context.Context, restaurantID string) (*domain.MenuDocument, error) {
	rest, err := s.Store.GetRestaurant(restaurantID)
	if err != nil {
		return nil, nil
	}

	categories, err := s.Store.ListCategories(restaurantID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}

	doc := &domain.MenuDocument{
		Source:     domain.SourceStore,
		Restaurant: *rest,
		Categories: make([]domain.MenuCategory, 0, len(categories)),
	}

	totalItems := 0
	for _, cat := range categories {
		items, err := s.Store.ListItems(restaurantID, cat.ID)
		if err != nil {
			return nil, err
		}
		totalItems += len(items)
		doc.Categories = append(doc.Categories, domain.MenuCategory{
			Key:     cat.ID,
			Name:    cat.Name,
			Enabled: cat.Enabled,
			Items:   items,
		})
	}
	if totalItems == 0 {
		return nil, nil
	}
	return doc, nil
}
