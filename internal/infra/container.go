package infra

import (
	"database/sql"
	"log"

	"salonloyalty/internal/config"
	"salonloyalty/internal/datastore"
	"salonloyalty/internal/datastore/memstore"
	"salonloyalty/internal/datastore/redis_store"
	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/pkg/caching"
	"salonloyalty/internal/pkg/limiter"
	"salonloyalty/internal/pkg/locker"
	"salonloyalty/internal/pkg/push"
	"salonloyalty/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewDB opens the Postgres pool; connections are made lazily.
func NewDB(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DBDSN),
		pgdriver.WithPassword(cfg.DBPassword),
	))
	return bun.NewDB(sqldb, pgdialect.New())
}

func provideRedis(injector *do.Injector, name string, url string) {
	do.ProvideNamed(injector, name, func(i *do.Injector) (redis.UniversalClient, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})
}

// NewContainer wires the infrastructure and every service. With inMemory set nothing
// outside the process is touched except the push provider and the staff chat.
func NewContainer(cfg *config.Config, inMemory bool) *do.Injector {
	injector := do.New()
	do.ProvideValue(injector, cfg)

	if inMemory {
		log.Println("using in-memory store, cache, limiter and locks")
		do.ProvideValue[interfaces.Store](injector, memstore.New())
		do.ProvideValue[interfaces.Limiter](injector, limiter.NewLocal())
		do.ProvideValue[interfaces.Locker](injector, locker.NewLocal())
		do.ProvideValue[interfaces.SummaryStore](injector, memstore.NewSummaryStore())
		do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
			return caching.NewCacheRedis(nil, true)
		})
	} else {
		do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
			return NewDB(cfg), nil
		})

		provideRedis(injector, "redis-cache", cfg.RedisCache)
		provideRedis(injector, "redis-mutex", cfg.RedisMutex)
		provideRedis(injector, "redis-limiter", cfg.RedisLimiter)
		provideRedis(injector, "redis-db", cfg.RedisDB)

		do.Provide(injector, func(i *do.Injector) (interfaces.Store, error) {
			bunDB, err := do.Invoke[*bun.DB](i)
			if err != nil {
				return nil, err
			}
			return datastore.NewStore(bunDB), nil
		})

		do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
			if err != nil {
				return nil, err
			}
			return caching.NewCacheRedis(dbRedis, true)
		})

		do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
			if err != nil {
				return nil, err
			}
			return limiter.NewLimiter(dbRedis)
		})

		do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
			if err != nil {
				return nil, err
			}
			return redsync.New(goredis.NewPool(dbRedis)), nil
		})

		do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
			rs, err := do.Invoke[*redsync.Redsync](i)
			if err != nil {
				return nil, err
			}
			return locker.NewRedsync(rs), nil
		})

		do.Provide(injector, func(i *do.Injector) (interfaces.SummaryStore, error) {
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
			if err != nil {
				return nil, err
			}
			return redis_store.NewSummaryStore(dbRedis), nil
		})
	}

	do.Provide(injector, func(i *do.Injector) (interfaces.PushProvider, error) {
		return push.NewClient(cfg.PushAPIURL, cfg.PushAccessToken, cfg.PushTimeout), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.StaffNotifier, error) {
		if cfg.TelegramBotToken == "" || cfg.TelegramStaffChatID == 0 {
			return services.LogNotifier{}, nil
		}
		return services.NewBot(cfg.TelegramBotToken, cfg.TelegramStaffChatID)
	})

	services.Register(injector)
	return injector
}
