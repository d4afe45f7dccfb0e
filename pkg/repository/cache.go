package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const siteInfoCacheKey = "siteinfo"

func productCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

// CachedStore puts a read-through cache in front of single product and
// site-info reads. Writes go to the store first and then drop the cached copy.
// Cache failures are logged and never fail the request.
type CachedStore struct {
	Store
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(store Store, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		Store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedStore) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := productCacheKey(id)

	var cached models.Product
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, p, s.ttl); err != nil {
		s.logger.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}

func (s *CachedStore) UpdateProduct(ctx context.Context, id primitive.ObjectID, patch *models.ProductPatch) (*models.Product, error) {
	p, err := s.Store.UpdateProduct(ctx, id, patch)
	s.invalidate(ctx, productCacheKey(id))
	return p, err
}

func (s *CachedStore) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	err := s.Store.DeleteProduct(ctx, id)
	s.invalidate(ctx, productCacheKey(id))
	return err
}

func (s *CachedStore) GetSiteInfo(ctx context.Context) (*models.SiteInfo, error) {
	var cached models.SiteInfo
	err := s.cache.GetJSON(ctx, siteInfoCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("Site info cache read failed", zap.Error(err))
	}

	info, err := s.Store.GetSiteInfo(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, siteInfoCacheKey, info, s.ttl); err != nil {
		s.logger.Warn("Site info cache write failed", zap.Error(err))
	}
	return info, nil
}

func (s *CachedStore) UpdateSiteInfo(ctx context.Context, patch *models.SiteInfoPatch) (*models.SiteInfo, error) {
	info, err := s.Store.UpdateSiteInfo(ctx, patch)
	s.invalidate(ctx, siteInfoCacheKey)
	return info, err
}

func (s *CachedStore) invalidate(ctx context.Context, key string) {
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
