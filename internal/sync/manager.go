package sync

import (
	"log"
	"sync"

	"qrmenu/internal/domain"
)

type State string

const (
	StateUnlinked State = "unlinked"
	StateLinking  State = "linking"
	StateSynced   State = "synced"
)

// Snapshot is an immutable copy of the mirrored menu handed to render
// callbacks; renderers never share mutable state with the manager.
type Snapshot struct {
	RestaurantID string                   `json:"restaurant_id"`
	State        State                    `json:"state"`
	Categories   []domain.Category        `json:"categories"`
	Items        map[string][]domain.Item `json:"items"`
}

type Store interface {
	ListCategories(restaurantID string) ([]domain.Category, error)
	ListItems(restaurantID, categoryID string) ([]domain.Item, error)
}

// Manager mirrors one restaurant's menu collections. It watches the
// category collection and keeps exactly one item subscription per known
// category: new categories are subscribed lazily, vanished ones are torn
// down in the same update cycle their disappearance is observed.
type Manager struct {
	restaurantID string
	store        Store
	broker       *Broker
	render       func(Snapshot)

	mu         sync.Mutex
	state      State
	catSubID   string
	itemSubs   map[string]string
	categories []domain.Category
	items      map[string][]domain.Item
}

func NewManager(restaurantID string, store Store, broker *Broker, render func(Snapshot)) *Manager {
	return &Manager{
		restaurantID: restaurantID,
		store:        store,
		broker:       broker,
		render:       render,
		state:        StateUnlinked,
		itemSubs:     make(map[string]string),
		items:        make(map[string][]domain.Item),
	}
}

// Start subscribes to the category collection and performs the initial
// load. A failed initial load leaves the manager in Linking; the
// subscription stays live and the next notification retries.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.state != StateUnlinked {
		m.mu.Unlock()
		return nil
	}
	m.state = StateLinking
	m.mu.Unlock()

	subID := m.broker.Subscribe(CategoriesPath(m.restaurantID), m.refreshCategories)

	m.mu.Lock()
	if m.state == StateUnlinked {
		// stopped before the subscription landed
		m.mu.Unlock()
		m.broker.Unsubscribe(subID)
		return nil
	}
	m.catSubID = subID
	m.mu.Unlock()

	return m.load()
}

// Stop tears down every live subscription and clears the mirror. After
// Stop returns, a manager for a different identity can start without
// overlapping subscriptions.
func (m *Manager) Stop() {
	m.mu.Lock()
	catSub := m.catSubID
	itemSubs := make([]string, 0, len(m.itemSubs))
	for _, id := range m.itemSubs {
		itemSubs = append(itemSubs, id)
	}
	m.catSubID = ""
	m.itemSubs = make(map[string]string)
	m.categories = nil
	m.items = make(map[string][]domain.Item)
	m.state = StateUnlinked
	m.mu.Unlock()

	if catSub != "" {
		m.broker.Unsubscribe(catSub)
	}
	for _, id := range itemSubs {
		m.broker.Unsubscribe(id)
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) RestaurantID() string {
	return m.restaurantID
}

// Snapshot returns a copy of the current mirror.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		RestaurantID: m.restaurantID,
		State:        m.state,
		Categories:   append([]domain.Category(nil), m.categories...),
		Items:        make(map[string][]domain.Item, len(m.items)),
	}
	for catID, items := range m.items {
		snap.Items[catID] = append([]domain.Item(nil), items...)
	}
	return snap
}

func (m *Manager) refreshCategories() {
	if err := m.load(); err != nil {
		log.Printf("[sync] %s: refresh failed: %v", m.restaurantID, err)
	}
}

func (m *Manager) load() error {
	categories, err := m.store.ListCategories(m.restaurantID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.state == StateUnlinked {
		// torn down while the read was in flight
		m.mu.Unlock()
		return nil
	}

	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		known[cat.ID] = true
		if _, subscribed := m.itemSubs[cat.ID]; !subscribed {
			catID := cat.ID
			m.itemSubs[catID] = m.broker.Subscribe(
				ItemsPath(m.restaurantID, catID),
				func() { m.refreshItems(catID) },
			)
			items, err := m.store.ListItems(m.restaurantID, catID)
			if err != nil {
				log.Printf("[sync] %s: initial item read for %s failed: %v", m.restaurantID, catID, err)
			} else {
				m.items[catID] = items
			}
		}
	}

	var stale []string
	for catID, subID := range m.itemSubs {
		if !known[catID] {
			stale = append(stale, subID)
			delete(m.itemSubs, catID)
			delete(m.items, catID)
		}
	}

	m.categories = categories
	m.state = StateSynced
	snap := m.snapshotLocked()
	m.mu.Unlock()

	for _, subID := range stale {
		m.broker.Unsubscribe(subID)
	}
	m.render(snap)
	return nil
}

func (m *Manager) refreshItems(categoryID string) {
	items, err := m.store.ListItems(m.restaurantID, categoryID)
	if err != nil {
		log.Printf("[sync] %s: item refresh for %s failed: %v", m.restaurantID, categoryID, err)
		return
	}

	m.mu.Lock()
	if _, watched := m.itemSubs[categoryID]; !watched {
		// category vanished between the notification and this read
		m.mu.Unlock()
		return
	}
	m.items[categoryID] = items
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.render(snap)
}
