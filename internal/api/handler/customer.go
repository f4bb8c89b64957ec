package handler

import (
	"strconv"

	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCustomer struct {
	container *do.Injector
}

func (gr *groupCustomer) Me(c echo.Context) error {
	ctx := c.Request().Context()
	auth, err := CustomerFromContext(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	customer, err := serviceCustomer.GetProfile(ctx, auth)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, customer, nil)
}

func (gr *groupCustomer) Ledger(c echo.Context) error {
	ctx := c.Request().Context()
	customer, err := ResolveValidCustomer(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	// out of range values fall back to the service defaults
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := serviceLedger.History(ctx, customer.ID, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"balance": customer.PointsBalance,
		"entries": entries,
	}, nil)
}

func (gr *groupCustomer) RequestClaim(c echo.Context) error {
	ctx := c.Request().Context()
	customer, err := ResolveValidCustomer(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceClaim, err := do.Invoke[*services.ServiceClaim](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceClaim.RequestClaim(ctx, customer.ID, c.Param("action"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

type devicePayload struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (gr *groupCustomer) RegisterDevice(c echo.Context) error {
	ctx := c.Request().Context()
	customer, err := ResolveValidCustomer(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload devicePayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := serviceCustomer.RegisterDevice(ctx, customer.ID, payload.Token, payload.Platform); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}

func (gr *groupCustomer) RemoveDevice(c echo.Context) error {
	ctx := c.Request().Context()
	customer, err := ResolveValidCustomer(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := serviceCustomer.RemoveDevice(ctx, customer.ID, c.Param("token")); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}
