package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"salonloyalty/internal/config"
	"salonloyalty/internal/interfaces"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/samber/do"
)

type ServiceAdminGate struct {
	container *do.Injector
	digest    [sha256.Size]byte
	enabled   bool
	limiter   interfaces.Limiter
}

func NewServiceAdminGate(container *do.Injector) (*ServiceAdminGate, error) {
	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAdminGate{
		container: container,
		digest:    sha256.Sum256([]byte(cfg.AdminSecret)),
		enabled:   cfg.AdminSecret != "",
		limiter:   limiter,
	}, nil
}

// Verify compares digests in constant time. An unset secret denies every candidate.
func (service *ServiceAdminGate) Verify(candidate string) error {
	if !service.enabled || candidate == "" {
		return ErrPermissionDenied
	}

	digest := sha256.Sum256([]byte(candidate))
	if subtle.ConstantTimeCompare(digest[:], service.digest[:]) != 1 {
		return ErrPermissionDenied
	}
	return nil
}

// VerifyFrom also counts failures per client and locks the client out once the limit is hit.
func (service *ServiceAdminGate) VerifyFrom(ctx context.Context, clientIP string, candidate string) error {
	verr := service.Verify(candidate)
	if verr == nil {
		return nil
	}

	err := service.limiter.Allow(ctx, LimitKeyAdminFailure(clientIP), redis_rate.PerMinute(ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE))
	if errors.Is(err, limiter.ErrRateLimited) {
		return ErrRateLimited
	}
	return verr
}
