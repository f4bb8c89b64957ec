package handler

import (
	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupRewardAction struct {
	container *do.Injector
}

func (gr *groupRewardAction) service() (*services.ServiceRewardAction, error) {
	return do.Invoke[*services.ServiceRewardAction](gr.container)
}

// List shows active actions publicly; admins may pass ?all=true.
func (gr *groupRewardAction) List(activeOnly bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		serviceRewardAction, err := gr.service()
		if err != nil {
			return httpx.RestAbort(c, nil, err)
		}

		actions, err := serviceRewardAction.List(c.Request().Context(), activeOnly || c.QueryParam("all") != "true")
		if err != nil {
			return httpx.RestAbort(c, nil, err)
		}

		return httpx.RestAbort(c, actions, nil)
	}
}

func (gr *groupRewardAction) Create(c echo.Context) error {
	var action models.RewardAction
	if err := c.Bind(&action); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceRewardAction, err := gr.service()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	saved, err := serviceRewardAction.Save(c.Request().Context(), &action)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, saved, nil)
}

func (gr *groupRewardAction) Update(c echo.Context) error {
	var action models.RewardAction
	if err := c.Bind(&action); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}
	action.ID = c.Param("id")

	serviceRewardAction, err := gr.service()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	ctx := c.Request().Context()
	if _, err := serviceRewardAction.Get(ctx, action.ID); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	saved, err := serviceRewardAction.Save(ctx, &action)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, saved, nil)
}

func (gr *groupRewardAction) Delete(c echo.Context) error {
	serviceRewardAction, err := gr.service()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := serviceRewardAction.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}

func (gr *groupRewardAction) Toggle(c echo.Context) error {
	serviceRewardAction, err := gr.service()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	action, err := serviceRewardAction.ToggleActive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, action, nil)
}
