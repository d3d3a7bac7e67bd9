package sync

import (
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/internal/domain"
)

type memStore struct {
	mu         stdsync.Mutex
	failReads  bool
	categories []domain.Category
	items      map[string][]domain.Item
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string][]domain.Item)}
}

func (s *memStore) ListCategories(string) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errors.New("store down")
	}
	return append([]domain.Category(nil), s.categories...), nil
}

func (s *memStore) ListItems(_, categoryID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errors.New("store down")
	}
	return append([]domain.Item(nil), s.items[categoryID]...), nil
}

func (s *memStore) set(categories []domain.Category, items map[string][]domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
	s.items = items
}

func (s *memStore) setFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = failing
}

func cat(id, name string) domain.Category {
	return domain.Category{ID: id, RestaurantID: "spice-garden", Name: name, Enabled: true}
}

func item(id, categoryID string) domain.Item {
	price := 5.0
	return domain.Item{ID: id, CategoryID: categoryID, RestaurantID: "spice-garden", Name: id, Price: &price, Available: true}
}

type renderLog struct {
	mu    stdsync.Mutex
	snaps []Snapshot
}

func (r *renderLog) record(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *renderLog) last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return Snapshot{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

func TestManagerInitialSync(t *testing.T) {
	store := newMemStore()
	store.set(
		[]domain.Category{cat("starters", "Starters"), cat("mains", "Mains")},
		map[string][]domain.Item{
			"starters": {item("samosa", "starters")},
			"mains":    {item("dal-makhani", "mains")},
		},
	)
	broker := NewBroker()
	renders := &renderLog{}

	manager := NewManager("spice-garden", store, broker, renders.record)
	require.NoError(t, manager.Start())

	assert.Equal(t, StateSynced, manager.State())
	assert.Equal(t, 1, broker.SubscriberCount(CategoriesPath("spice-garden")))
	assert.Equal(t, 1, broker.SubscriberCount(ItemsPath("spice-garden", "starters")))
	assert.Equal(t, 1, broker.SubscriberCount(ItemsPath("spice-garden", "mains")))

	snap, ok := renders.last()
	require.True(t, ok)
	require.Len(t, snap.Categories, 2)
	assert.Equal(t, "samosa", snap.Items["starters"][0].ID)
}

func TestManagerSubscribesNewCategoryLazily(t *testing.T) {
	store := newMemStore()
	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters")}},
	)
	broker := NewBroker()
	renders := &renderLog{}

	manager := NewManager("spice-garden", store, broker, renders.record)
	require.NoError(t, manager.Start())
	defer manager.Stop()

	assert.Zero(t, broker.SubscriberCount(ItemsPath("spice-garden", "desserts")))

	store.set(
		[]domain.Category{cat("starters", "Starters"), cat("desserts", "Desserts")},
		map[string][]domain.Item{
			"starters": {item("samosa", "starters")},
			"desserts": {item("gulab-jamun", "desserts")},
		},
	)
	broker.Notify(CategoriesPath("spice-garden"))

	require.Eventually(t, func() bool {
		return broker.SubscriberCount(ItemsPath("spice-garden", "desserts")) == 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		snap := manager.Snapshot()
		return len(snap.Items["desserts"]) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestManagerTearsDownVanishedCategoryInSameCycle(t *testing.T) {
	store := newMemStore()
	store.set(
		[]domain.Category{cat("starters", "Starters"), cat("desserts", "Desserts")},
		map[string][]domain.Item{
			"starters": {item("samosa", "starters")},
			"desserts": {item("gulab-jamun", "desserts")},
		},
	)
	broker := NewBroker()
	renders := &renderLog{}

	manager := NewManager("spice-garden", store, broker, renders.record)
	require.NoError(t, manager.Start())
	defer manager.Stop()

	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters")}},
	)
	broker.Notify(CategoriesPath("spice-garden"))

	require.Eventually(t, func() bool {
		return broker.SubscriberCount(ItemsPath("spice-garden", "desserts")) == 0
	}, time.Second, 5*time.Millisecond)

	snap := manager.Snapshot()
	assert.NotContains(t, snap.Items, "desserts")
	require.Len(t, snap.Categories, 1)
}

func TestManagerReflectsItemEdits(t *testing.T) {
	store := newMemStore()
	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters")}},
	)
	broker := NewBroker()
	renders := &renderLog{}

	manager := NewManager("spice-garden", store, broker, renders.record)
	require.NoError(t, manager.Start())
	defer manager.Stop()

	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters"), item("paneer-tikka", "starters")}},
	)
	broker.Notify(ItemsPath("spice-garden", "starters"))

	require.Eventually(t, func() bool {
		return len(manager.Snapshot().Items["starters"]) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestManagerStopLeavesNoSubscriptions(t *testing.T) {
	store := newMemStore()
	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters")}},
	)
	broker := NewBroker()

	manager := NewManager("spice-garden", store, broker, func(Snapshot) {})
	require.NoError(t, manager.Start())

	manager.Stop()

	assert.Zero(t, broker.TotalSubscribers())
	assert.Equal(t, StateUnlinked, manager.State())

	// a manager for a different identity starts cleanly afterwards
	other := NewManager("corner-cafe", store, broker, func(Snapshot) {})
	require.NoError(t, other.Start())
	defer other.Stop()
	assert.Equal(t, 1, broker.SubscriberCount(CategoriesPath("corner-cafe")))
	assert.Zero(t, broker.SubscriberCount(CategoriesPath("spice-garden")))
}

func TestManagerFailedInitialLoadStaysLinking(t *testing.T) {
	store := newMemStore()
	store.setFailing(true)
	broker := NewBroker()

	manager := NewManager("spice-garden", store, broker, func(Snapshot) {})
	require.Error(t, manager.Start())
	defer manager.Stop()

	assert.Equal(t, StateLinking, manager.State())

	store.setFailing(false)
	store.set(
		[]domain.Category{cat("starters", "Starters")},
		map[string][]domain.Item{"starters": {item("samosa", "starters")}},
	)
	broker.Notify(CategoriesPath("spice-garden"))

	require.Eventually(t, func() bool {
		return manager.State() == StateSynced
	}, time.Second, 5*time.Millisecond)
}
