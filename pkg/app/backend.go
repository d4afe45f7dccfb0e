// Package app owns the long-lived resources a storefront tier runs on: the
// document store, the optional cache, the order notifier and the optional
// etcd registration.
package app

import (
	"context"
	"fmt"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
)

type Backend struct {
	Store    repository.Store
	Notifier *notify.ActorNotifier

	mongo     *repository.MongoRepository
	redis     *repository.RedisRepository
	discovery *discovery.ServiceDiscovery
	instance  *discovery.ServiceInstance
	logger    *zap.Logger
	config    *config.Config
}

func NewBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
	defer cancel()
	if err := mongoRepo.Ping(pingCtx); err != nil {
		mongoRepo.Close(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	if err := mongoRepo.EnsureIndexes(pingCtx); err != nil {
		mongoRepo.Close(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	logger.Info("MongoDB connected successfully", zap.String("database", cfg.MongoDB.Database))

	b := &Backend{
		Store:  mongoRepo,
		mongo:  mongoRepo,
		logger: logger,
		config: cfg,
	}

	// Redis
	if cfg.Redis.Enabled() {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		if err := redisRepo.Ping(pingCtx); err != nil {
			logger.Warn("Redis connection failed, continuing without cache", zap.Error(err))
			redisRepo.Close()
		} else {
			logger.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr))
			b.redis = redisRepo
			b.Store = repository.NewCachedStore(mongoRepo, redisRepo, cfg.Redis.TTL, logger.Named("cache"))
		}
	}

	// Order notifier
	notifier, err := notify.NewActorNotifier(logger)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}
	b.Notifier = notifier

	return b, nil
}

// Register announces this tier in etcd when endpoints are configured. Failures
// are logged; the tier keeps serving without discovery.
func (b *Backend) Register(ctx context.Context) {
	if !b.config.Etcd.Enabled() {
		return
	}

	sd, err := discovery.NewServiceDiscovery(&b.config.Etcd, b.logger)
	if err != nil {
		b.logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		return
	}
	instance := &discovery.ServiceInstance{
		Name: b.config.Server.Name,
		Host: b.config.Server.Host,
		Port: b.config.Server.Port,
	}
	if err := sd.Register(ctx, instance); err != nil {
		b.logger.Warn("Failed to register service", zap.Error(err))
		sd.Close()
		return
	}

	b.discovery = sd
	b.instance = instance

	fields := []zap.Field{zap.String("name", instance.Name), zap.String("address", instance.Addr())}
	peers, err := sd.Discover(ctx, instance.Name)
	if err != nil {
		b.logger.Warn("Failed to list registered instances", zap.Error(err))
	} else {
		fields = append(fields, zap.Int("instances", len(peers)))
	}
	b.logger.Info("Service registered in etcd", fields...)
}

// Close releases everything in reverse order of acquisition.
func (b *Backend) Close(ctx context.Context) {
	if b.discovery != nil {
		if err := b.discovery.Deregister(ctx, b.instance); err != nil {
			b.logger.Error("Failed to deregister service", zap.Error(err))
		}
		b.discovery.Close()
	}
	if b.Notifier != nil {
		if err := b.Notifier.Stop(); err != nil {
			b.logger.Warn("Failed to stop order notifier", zap.Error(err))
		}
	}
	if b.redis != nil {
		b.redis.Close()
	}
	if b.mongo != nil {
		if err := b.mongo.Close(ctx); err != nil {
			b.logger.Error("Failed to close MongoDB", zap.Error(err))
		}
	}
}
