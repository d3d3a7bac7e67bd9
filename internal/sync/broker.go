package sync

import (
	"sync"

	"github.com/google/uuid"
)

// CategoriesPath is the collection path notified when a restaurant's
// category set or any category's fields change.
func CategoriesPath(restaurantID string) string {
	return "restaurants/" + restaurantID + "/categories"
}

func ItemsPath(restaurantID, categoryID string) string {
	return "restaurants/" + restaurantID + "/categories/" + categoryID + "/items"
}

type subscription struct {
	id      string
	path    string
	wake    chan struct{}
	done    chan struct{}
	handler func()
}

// Broker is an in-process change feed keyed by collection path. Each
// subscription gets its own delivery goroutine, so one subscriber's
// notifications arrive serialized; bursts coalesce into a single wake-up.
// Across subscriptions no ordering is guaranteed.
type Broker struct {
	mu    sync.Mutex
	subs  map[string]map[string]*subscription
	paths map[string]string
}

func NewBroker() *Broker {
	return &Broker{
		subs:  make(map[string]map[string]*subscription),
		paths: make(map[string]string),
	}
}

// Subscribe registers a handler for a collection path and returns the
// subscription id used to unsubscribe. Handlers carry no payload; they are
// expected to re-read the collection they watch.
func (b *Broker) Subscribe(path string, handler func()) string {
	sub := &subscription{
		id:      uuid.NewString(),
		path:    path,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		handler: handler,
	}

	b.mu.Lock()
	if b.subs[path] == nil {
		b.subs[path] = make(map[string]*subscription)
	}
	b.subs[path][sub.id] = sub
	b.paths[sub.id] = path
	b.mu.Unlock()

	go sub.run()
	return sub.id
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
			s.handler()
		}
	}
}

// Unsubscribe stops delivery for the subscription. Safe to call twice; an
// in-flight handler finishes, nothing is delivered after that.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	path, ok := b.paths[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	sub := b.subs[path][id]
	delete(b.subs[path], id)
	if len(b.subs[path]) == 0 {
		delete(b.subs, path)
	}
	delete(b.paths, id)
	b.mu.Unlock()

	close(sub.done)
}

// Notify wakes every subscriber of the path. Never blocks: a subscriber
// that already has a wake-up pending is not queued twice.
func (b *Broker) Notify(path string) {
	b.mu.Lock()
	targets := make([]*subscription, 0, len(b.subs[path]))
	for _, sub := range b.subs[path] {
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

func (b *Broker) SubscriberCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[path])
}

func (b *Broker) TotalSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.paths)
}
