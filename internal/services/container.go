package services

import (
	"salonloyalty/internal/config"

	"github.com/samber/do"
)

// Register provides every domain service. Infrastructure (store, cache, limiter,
// locker, push provider, summary store, staff notifier, *config.Config) must be
// provided by the caller.
func Register(container *do.Injector) {
	do.ProvideValue(container, NewChangeFeed())

	do.Provide(container, func(i *do.Injector) (*Authentication, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		return NewAuthentication(cfg.JWTSecret)
	})

	do.Provide(container, NewServiceConfig)
	do.Provide(container, NewServiceLedger)
	do.Provide(container, NewServiceClaim)
	do.Provide(container, NewServiceDispatcher)
	do.Provide(container, NewServiceBirthday)
	do.Provide(container, NewServiceBroadcast)
	do.Provide(container, NewServiceAdminGate)
	do.Provide(container, NewServiceCustomer)
	do.Provide(container, NewServiceRewardAction)
}
