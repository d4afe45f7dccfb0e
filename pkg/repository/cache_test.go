package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestCachedStoreReadsThroughAndInvalidates(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryRepository()
	cache := newMapCache()
	store := NewCachedStore(backing, cache, time.Minute, zap.NewNop())

	p := &models.Product{Title: "Phone", Category: "Phones", Price: 100}
	require.NoError(t, store.CreateProduct(ctx, p))

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone", got.Title)
	assert.Equal(t, 0, cache.hits)

	got, err = store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 1, cache.hits)

	title := "Phone X"
	_, err = store.UpdateProduct(ctx, p.ID, &models.ProductPatch{Title: &title})
	require.NoError(t, err)

	got, err = store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone X", got.Title)

	require.NoError(t, store.DeleteProduct(ctx, p.ID))
	_, err = store.GetProduct(ctx, p.ID)
	assert.Error(t, err)
}

func TestCachedStoreSiteInfo(t *testing.T) {
	ctx := context.Background()
	store := NewCachedStore(NewMemoryRepository(), newMapCache(), time.Minute, zap.NewNop())

	info, err := store.GetSiteInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My Site", info.SiteName)

	name := "Shopaglu"
	_, err = store.UpdateSiteInfo(ctx, &models.SiteInfoPatch{SiteName: &name})
	require.NoError(t, err)

	info, err = store.GetSiteInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shopaglu", info.SiteName)
}
