package localcache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 5 * time.Minute

// Cache keeps JSON encoded documents in process memory. It serves single
// instance deployments that run without Redis.
type Cache struct {
	store *gocache.Cache
	ttl   time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanupInterval), ttl: ttl}
}

func (c *Cache) SetCache(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, raw, gocache.DefaultExpiration)
	return nil
}

func (c *Cache) GetCache(_ context.Context, key string, out interface{}) (bool, error) {
	cached, found := c.store.Get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(cached.([]byte), out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) DeleteCache(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}

// Revocations remembers logged-out token ids until the token would expire.
type Revocations struct {
	store *gocache.Cache
}

func NewRevocations() *Revocations {
	return &Revocations{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (r *Revocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	r.store.Set(tokenID, struct{}{}, ttl)
	return nil
}

func (r *Revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, found := r.store.Get(tokenID)
	return found, nil
}
