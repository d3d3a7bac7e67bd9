package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := NewSessionStore(time.Minute)

	session := store.Create(menuFixture(), "7")
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "spice-garden", session.RestaurantID)
	assert.Equal(t, "7", session.Cart.Table())

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestSessionStorePurgesIdleSessions(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	old := store.Create(menuFixture(), "")
	time.Sleep(25 * time.Millisecond)

	store.Create(menuFixture(), "")

	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}
