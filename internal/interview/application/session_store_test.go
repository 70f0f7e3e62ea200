package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreIdleExpiry(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	owner := Principal{ID: "manager-1", Role: RoleManager}
	store.put(&Session{ID: "s1", Principal: owner})
	store.put(&Session{ID: "s2", Principal: owner})

	now = now.Add(20 * time.Minute)
	_, err := store.get("s1", owner)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = store.get("s1", owner)
	require.NoError(t, err, "access refreshes the idle timer")
	_, err = store.get("s2", owner)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	now = now.Add(time.Hour)
	store.put(&Session{ID: "s3", Principal: owner})
	assert.Equal(t, 1, store.Len(), "put sweeps expired sessions")
}

func TestSessionStoreRejectsOtherPrincipals(t *testing.T) {
	store := NewSessionStore(0)
	store.put(&Session{ID: "s1", Principal: Principal{ID: "manager-1"}})

	_, err := store.get("s1", Principal{ID: "manager-2"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.get("missing", Principal{ID: "manager-1"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.remove("s1")
	assert.Equal(t, 0, store.Len())
}

func TestParseRoleAndAccess(t *testing.T) {
	role, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("owner")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}
