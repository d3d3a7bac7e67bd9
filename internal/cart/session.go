package cart

import (
	"sync"
	"time"

	"github.com/lucsky/cuid"

	"qrmenu/internal/domain"
)

type Session struct {
	ID           string
	RestaurantID string
	Cart         *Cart
	CreatedAt    time.Time

	lastTouch time.Time
}

// SessionStore keeps diner carts in process memory, keyed by an opaque id.
// Carts are never persisted; an idle session is dropped after the TTL.
type SessionStore struct {
	TTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		TTL:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (s *SessionStore) Create(menu *domain.MenuDocument, table string) *Session {
	now := time.Now()
	session := &Session{
		ID:           cuid.New(),
		RestaurantID: menu.Restaurant.ID,
		Cart:         New(menu, table),
		CreatedAt:    now,
		lastTouch:    now,
	}

	s.mu.Lock()
	s.purgeLocked(now)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	session.lastTouch = time.Now()
	return session, true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) purgeLocked(now time.Time) {
	if s.TTL <= 0 {
		return
	}
	for id, session := range s.sessions {
		if now.Sub(session.lastTouch) > s.TTL {
			delete(s.sessions, id)
		}
	}
}
