package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/samber/do"
)

type ServiceClaim struct {
	container *do.Injector
	store     interfaces.Store
	cache     caching.Cache
	limiter   interfaces.Limiter
	feed      *ChangeFeed
	now       func() time.Time
}

func NewServiceClaim(container *do.Injector) (*ServiceClaim, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	feed, err := do.Invoke[*ChangeFeed](container)
	if err != nil {
		return nil, err
	}

	return &ServiceClaim{container, store, cache, limiter, feed, time.Now}, nil
}

func validateActionID(actionID string) error {
	n := len([]rune(actionID))
	if n == 0 || n > MAX_ACTION_ID_LENGTH {
		return invalid("action id must be 1 to %d characters", MAX_ACTION_ID_LENGTH)
	}
	return nil
}

// RequestClaim moves an open claim to pending. Repeated requests echo the current status.
func (service *ServiceClaim) RequestClaim(ctx context.Context, customerID string, actionID string) (*models.ClaimResult, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateActionID(actionID); err != nil {
		return nil, err
	}

	err := service.limiter.Allow(ctx, LimitKeyCustomerClaim(customerID), redis_rate.PerMinute(CLAIM_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return nil, ErrRateLimited
		}
		return nil, err
	}

	result := &models.ClaimResult{CustomerID: customerID, ActionID: actionID}
	err = runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return storeErr(err, "customer")
		}

		action, err := tx.GetRewardAction(ctx, actionID)
		if err != nil {
			return storeErr(err, "reward action")
		}
		result.Points = action.Points

		switch customer.RewardClaims.Status(actionID) {
		case models.ClaimApproved:
			result.Result = models.CLAIM_RESULT_ALREADY_APPROVED
			result.Status = models.ClaimApproved
			return nil
		case models.ClaimPending:
			result.Result = models.CLAIM_RESULT_ALREADY_PENDING
			result.Status = models.ClaimPending
			return nil
		}

		if !action.AvailableAt(service.now()) {
			return ErrActionUnavailable
		}

		claims := customer.RewardClaims.Clone()
		claims[actionID] = models.ClaimPending
		if err := tx.UpdateRewardClaims(ctx, customerID, claims); err != nil {
			return err
		}

		result.Result = models.CLAIM_RESULT_PENDING_SET
		result.Status = models.ClaimPending
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Result == models.CLAIM_RESULT_PENDING_SET {
		caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	}
	return result, nil
}

// ApproveClaim credits a pending claim exactly once. An approved claim returns ErrAlreadyApproved with its result.
func (service *ServiceClaim) ApproveClaim(ctx context.Context, customerID string, actionID string, employeeName string) (*models.ClaimResult, error) {
	employeeName = strings.TrimSpace(employeeName)
	switch {
	case strings.TrimSpace(customerID) == "":
		return nil, invalid("customer id is required")
	case employeeName == "":
		return nil, invalid("employee name is required")
	}
	if err := validateActionID(actionID); err != nil {
		return nil, err
	}

	result := &models.ClaimResult{CustomerID: customerID, ActionID: actionID}
	var reason string
	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return storeErr(err, "customer")
		}

		switch customer.RewardClaims.Status(actionID) {
		case models.ClaimApproved:
			result.Result = models.CLAIM_RESULT_ALREADY_APPROVED
			result.Status = models.ClaimApproved
			return nil
		case models.ClaimPending:
		default:
			return wrapf(errorx.Exist, ErrNotPending, "action %s", actionID)
		}

		action, err := tx.GetRewardAction(ctx, actionID)
		if err != nil {
			return storeErr(err, "reward action")
		}

		reason = REASON_REWARD_ACTION_PREFIX + action.Title
		balance, posted, err := postEntryTx(ctx, tx, customerID, action.Points, reason, models.EntryOptions{
			EmployeeName: employeeName,
			Source:       models.SOURCE_REWARD_ACTION_ADMIN,
			OperationID:  OperationIDRewardAction(actionID),
		})
		if err != nil {
			return err
		}
		if !posted {
			return wrapf(errorx.Exist, ErrConflict, "action %s was already credited", actionID)
		}

		claims := customer.RewardClaims.Clone()
		claims[actionID] = models.ClaimApproved
		if err := tx.UpdateRewardClaims(ctx, customerID, claims); err != nil {
			return err
		}

		result.Result = models.CLAIM_RESULT_APPROVED
		result.Status = models.ClaimApproved
		result.Points = action.Points
		result.Balance = &balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Result == models.CLAIM_RESULT_ALREADY_APPROVED {
		return result, ErrAlreadyApproved
	}

	caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	service.feed.Publish(BalanceChange{CustomerID: customerID, Balance: *result.Balance, Delta: result.Points, Reason: reason})
	return result, nil
}
