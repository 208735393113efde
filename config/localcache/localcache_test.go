package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStoresCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(time.Minute)

	type doc struct {
		Name  string   `json:"name"`
		Times []string `json:"times"`
	}
	in := doc{Name: "John", Times: []string{"08:00"}}
	require.NoError(t, cache.SetCache(ctx, "PATIENT:1", in))
	in.Times[0] = "09:00"

	var got doc
	found, err := cache.GetCache(ctx, "PATIENT:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"08:00"}, got.Times)

	require.NoError(t, cache.DeleteCache(ctx, "PATIENT:1", "PATIENT:2"))
	found, err = cache.GetCache(ctx, "PATIENT:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheEntriesExpire(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(20 * time.Millisecond)
	require.NoError(t, cache.SetCache(ctx, "k", 1))
	time.Sleep(40 * time.Millisecond)

	var n int
	found, err := cache.GetCache(ctx, "k", &n)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	r := NewRevocations()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
