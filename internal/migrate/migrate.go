package migrate

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"qrmenu/internal/domain"
)

// Repository is the slice of the menu store the importer writes through.
type Repository interface {
	UpsertRestaurant(rest *domain.Restaurant) error
	UpsertCategory(cat *domain.Category) error
	UpsertItem(item *domain.Item) error
	PruneCategories(restaurantID string, keep []string) (int64, error)
	PruneItems(restaurantID, categoryID string, keep []string) (int64, error)
}

// Report sums up one import run.
type Report struct {
	Restaurants int
	Categories  int
	Items       int
	Pruned      int64
	Skipped     []string
}

// Importer syncs a directory of static menu files into the store. The
// expected layout is <root>/<restaurant-id>/menu.json, the same shape the
// static hosting serves. A broken file skips that restaurant and the run
// carries on.
type Importer struct {
	Repo         Repository
	DryRun       bool
	Prune        bool
	ShowProgress bool
}

func (im *Importer) Run(root string) (*Report, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read menu root: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), "menu.json")); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no menu.json files under %s", root)
	}

	var bar *progressbar.ProgressBar
	if im.ShowProgress {
		bar = progressbar.Default(int64(len(ids)), "importing menus")
	}

	report := &Report{}
	for _, restaurantID := range ids {
		if err := im.importOne(root, restaurantID, report); err != nil {
			log.Printf("[migrate] skipping %s: %v", restaurantID, err)
			report.Skipped = append(report.Skipped, restaurantID)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return report, nil
}

func (im *Importer) importOne(root, restaurantID string, report *Report) error {
	data, err := os.ReadFile(filepath.Join(root, restaurantID, "menu.json"))
	if err != nil {
		return err
	}
	doc, err := domain.ParseStaticMenu(restaurantID, data)
	if err != nil {
		return err
	}

	now := time.Now()

	if im.DryRun {
		report.Restaurants++
		for _, cat := range doc.Categories {
			report.Categories++
			report.Items += len(cat.Items)
		}
		return nil
	}

	rest := doc.Restaurant
	rest.CreatedAt = now
	rest.UpdatedAt = now
	if err := im.Repo.UpsertRestaurant(&rest); err != nil {
		return err
	}
	report.Restaurants++

	keepCats := make([]string, 0, len(doc.Categories))
	for idx, menuCat := range doc.Categories {
		cat := domain.Category{
			ID:           menuCat.Key,
			RestaurantID: restaurantID,
			Name:         menuCat.Name,
			Enabled:      menuCat.Enabled,
			SortOrder:    idx,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := im.Repo.UpsertCategory(&cat); err != nil {
			return err
		}
		report.Categories++
		keepCats = append(keepCats, cat.ID)

		keepItems := make([]string, 0, len(menuCat.Items))
		for _, item := range menuCat.Items {
			imported := item
			imported.CreatedAt = now
			imported.UpdatedAt = now
			// sized items get their cheapest size as the stored flat
			// price, so list views price them the same everywhere
			if imported.Price == nil && len(imported.Sizes) > 0 {
				lowest := imported.DisplayPrice()
				imported.Price = &lowest
			}
			if err := im.Repo.UpsertItem(&imported); err != nil {
				return err
			}
			report.Items++
			keepItems = append(keepItems, imported.ID)
		}

		if im.Prune {
			pruned, err := im.Repo.PruneItems(restaurantID, cat.ID, keepItems)
			if err != nil {
				return err
			}
			report.Pruned += pruned
		}
	}

	if im.Prune {
		pruned, err := im.Repo.PruneCategories(restaurantID, keepCats)
		if err != nil {
			return err
		}
		report.Pruned += pruned
	}
	return nil
}
