package cache

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewStore),
	fx.Provide(func(store Store) Revalidator { return NewStoreRevalidator(store) }),
)

type Params struct {
	fx.In

	Lc    fx.Lifecycle
	Cfg   config.Config
	Clock clock.Clock
	Log   *zap.Logger
}

// NewStore selects the Store implementation from CACHE_DRIVER.
func NewStore(p Params) (Store, error) {
	log := p.Log.Named("cache")
	if p.Cfg.Cache.Driver != config.CacheDriverRedis {
		log.Info("using in-memory cache")
		return NewMemoryStore(p.Clock), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(p.Cfg.Cache.RedisAddr),
		Password: strings.TrimSpace(p.Cfg.Cache.RedisPassword),
		DB:       p.Cfg.Cache.RedisDB,
	})
	store, err := NewRedisStore(client)
	if err != nil {
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("using redis cache", zap.String("addr", p.Cfg.Cache.RedisAddr))
	return store, nil
}
