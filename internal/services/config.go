package services

import (
	"context"
	"errors"
	"log"
	"strconv"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/pkg/caching"

	"github.com/samber/do"
)

type ServiceConfig struct {
	container *do.Injector
	store     interfaces.ConfigRepository
	cache     caching.Cache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, store, cache}, nil
}

// GetStringConfig falls back to defaultValue when the row is missing.
func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if errors.Is(err, interfaces.ErrNotFound) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCache(ctx, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Println("config", key, "is not an int:", value)
		return defaultValue, nil
	}

	return intValue, nil
}
