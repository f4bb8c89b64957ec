package services

import (
	"context"
	"strings"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
)

type ServiceRewardAction struct {
	container *do.Injector
	store     interfaces.Store
	cache     caching.Cache
}

func NewServiceRewardAction(container *do.Injector) (*ServiceRewardAction, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceRewardAction{container, store, cache}, nil
}

func (service *ServiceRewardAction) List(ctx context.Context, activeOnly bool) ([]*models.RewardAction, error) {
	callback := func() ([]*models.RewardAction, error) {
		actions, err := service.store.ListRewardActions(ctx, activeOnly)
		if err != nil {
			return nil, err
		}
		if actions == nil {
			actions = []*models.RewardAction{}
		}
		return actions, nil
	}

	return caching.UseCache(ctx, service.cache, DBKeyRewardActions(activeOnly), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceRewardAction) Get(ctx context.Context, id string) (*models.RewardAction, error) {
	action, err := service.store.FindRewardAction(ctx, id)
	if err != nil {
		return nil, storeErr(err, "reward action")
	}
	return action, nil
}

// Save creates the action when ID is empty, otherwise replaces it.
func (service *ServiceRewardAction) Save(ctx context.Context, action *models.RewardAction) (*models.RewardAction, error) {
	action.ID = strings.TrimSpace(action.ID)
	action.Title = strings.TrimSpace(action.Title)
	action.Description = strings.TrimSpace(action.Description)
	if action.Link != nil && strings.TrimSpace(*action.Link) == "" {
		action.Link = nil
	}

	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if err := validateActionID(action.ID); err != nil {
		return nil, err
	}
	switch {
	case action.Title == "":
		return nil, invalid("title is required")
	case action.Points <= 0:
		return nil, invalid("points must be greater than 0")
	case action.ValidFrom != nil && action.ValidUntil != nil && action.ValidUntil.Before(*action.ValidFrom):
		return nil, invalid("valid_until is before valid_from")
	}

	if err := service.store.SaveRewardAction(ctx, action); err != nil {
		return nil, err
	}

	service.invalidate(ctx)
	return service.Get(ctx, action.ID)
}

func (service *ServiceRewardAction) Delete(ctx context.Context, id string) error {
	if err := service.store.DeleteRewardAction(ctx, id); err != nil {
		return storeErr(err, "reward action")
	}

	service.invalidate(ctx)
	return nil
}

func (service *ServiceRewardAction) ToggleActive(ctx context.Context, id string) (*models.RewardAction, error) {
	action, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	action.Active = !action.Active
	if err := service.store.SaveRewardAction(ctx, action); err != nil {
		return nil, err
	}

	service.invalidate(ctx)
	return action, nil
}

func (service *ServiceRewardAction) invalidate(ctx context.Context) {
	caching.Invalidate(ctx, service.cache, DBKeyRewardActions(true), DBKeyRewardActions(false))
}
