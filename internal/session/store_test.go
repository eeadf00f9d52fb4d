package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/models"
)

func TestCreate_AssignsKeyAndTimestamp(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()

	// Act
	key, err := store.Create(context.Background(), &models.Session{})

	// Assert
	require.NoError(t, err)
	assert.Len(t, key, 24)

	sess, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, key, sess.Key)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestCreate_KeysAreUnique(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()
	seen := map[string]bool{}

	// Act / Assert
	for i := 0; i < 100; i++ {
		key, err := store.Create(context.Background(), &models.Session{})
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestGet_UnknownKey(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()

	// Act
	_, err := store.Get(context.Background(), "missing")

	// Assert
	assert.ErrorIs(t, err, ierrors.ErrSessionNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()
	key, err := store.Create(context.Background(), &models.Session{OAuthState: "original"})
	require.NoError(t, err)

	// Act: mutate the returned session
	sess, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	sess.OAuthState = "tampered"

	// Assert: the stored session is untouched
	again, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "original", again.OAuthState)
}

func TestUpdate_MutatesStoredSession(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()
	key, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)

	// Act
	err = store.Update(context.Background(), key, func(sess *models.Session) {
		sess.LastRun = &models.UndoEntry{EmailIDs: []string{"a"}}
	})

	// Assert
	require.NoError(t, err)
	sess, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, sess.LastRun)
	assert.Equal(t, []string{"a"}, sess.LastRun.EmailIDs)
}

func TestUpdate_UnknownKey(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()

	// Act
	err := store.Update(context.Background(), "missing", func(sess *models.Session) {})

	// Assert
	assert.ErrorIs(t, err, ierrors.ErrSessionNotFound)
}

func TestDelete_RemovesSession(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()
	key, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)

	// Act
	err = store.Delete(context.Background(), key)

	// Assert
	require.NoError(t, err)
	_, err = store.Get(context.Background(), key)
	assert.ErrorIs(t, err, ierrors.ErrSessionNotFound)
}

func TestDeleteExpired_RemovesOnlyOldSessions(t *testing.T) {
	// Arrange
	store := NewInMemoryStore()
	oldKey, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)
	freshKey, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)

	err = store.Update(context.Background(), oldKey, func(sess *models.Session) {
		sess.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	})
	require.NoError(t, err)

	// Act
	removed := store.DeleteExpired(context.Background(), time.Now().UTC().Add(-24*time.Hour))

	// Assert
	assert.Equal(t, 1, removed)
	_, err = store.Get(context.Background(), oldKey)
	assert.ErrorIs(t, err, ierrors.ErrSessionNotFound)
	_, err = store.Get(context.Background(), freshKey)
	assert.NoError(t, err)
}
