package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, context.Background()
}

func TestCacheRoundTrip(t *testing.T) {
	mr, ctx := setup(t)
	client, err := Connect(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	cache := NewCache(client, time.Minute)

	type doc struct {
		Name string `json:"name"`
	}
	require.NoError(t, cache.SetCache(ctx, "PATIENT:1", doc{Name: "John"}))

	var got doc
	found, err := cache.GetCache(ctx, "PATIENT:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "John", got.Name)

	require.NoError(t, cache.DeleteCache(ctx, "PATIENT:1"))
	found, err = cache.GetCache(ctx, "PATIENT:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("PATIENT:1"))
}

func TestRevocations(t *testing.T) {
	mr, ctx := setup(t)
	client, err := Connect(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	revocations := NewRevocations(client)

	revoked, err := revocations.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revocations.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = revocations.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = revocations.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revocations.Revoke(ctx, "expired", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedPrefix+"expired"))
}

func TestConnectFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
