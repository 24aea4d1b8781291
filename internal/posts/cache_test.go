package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/database/dbtest"
)

func TestRedisCache_InvalidateRejectsLateWrite(t *testing.T) {
	cache := NewRedisCache(dbtest.NewRedis(t))
	ctx := context.Background()
	key := postKey(42)

	version, err := cache.Version(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, version)

	stored, err := cache.SetIfVersion(ctx, key, version, []byte(`{"id":42}`), time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	data, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":42}`, string(data))

	// A reader took the version, then the post changed.
	require.NoError(t, cache.Invalidate(ctx, key, allPostsKey))

	stored, err = cache.SetIfVersion(ctx, key, version, []byte(`{"id":42,"stale":true}`), time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := cache.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, version+1, next)
	stored, err = cache.SetIfVersion(ctx, key, next, []byte(`{"id":42}`), time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
}
