package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (s *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func TestManager_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	mgr := NewManager(store)

	sess, err := mgr.Create(ctx, 42, "alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Contains(t, store.data, "session:"+sess.ID)

	got, err := mgr.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, mgr.Delete(ctx, sess.ID))
	_, err = mgr.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiredSessionIsRemoved(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Now()
	mgr := &manager{store: store, now: func() time.Time { return now }}

	sess, err := mgr.Create(ctx, 1, "bob", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = mgr.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.NotContains(t, store.data, "session:"+sess.ID)
}

func TestManager_InvalidPayload(t *testing.T) {
	store := newMemStore()
	store.data["session:broken"] = "{not json"

	_, err := NewManager(store).Get(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestManager_RejectsNonPositiveTTL(t *testing.T) {
	_, err := NewManager(newMemStore()).Create(context.Background(), 1, "x", 0)
	assert.Error(t, err)
}
