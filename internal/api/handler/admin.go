package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/shopspring/decimal"
)

type groupAdmin struct {
	container *do.Injector
}

type verifyPayload struct {
	Secret string `json:"secret"`
}

// Verify lets the admin UI check a secret before storing it.
func (gr *groupAdmin) Verify(c echo.Context) error {
	var payload verifyPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}
	if payload.Secret == "" {
		payload.Secret = c.Request().Header.Get(HeaderAdminSecret)
	}

	gate, err := do.Invoke[*services.ServiceAdminGate](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := gate.VerifyFrom(c.Request().Context(), c.RealIP(), payload.Secret); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]bool{"ok": true}, nil)
}

type approvePayload struct {
	CustomerID   string `json:"customer_id"`
	ActionID     string `json:"action_id"`
	EmployeeName string `json:"employee_name"`
}

func (gr *groupAdmin) ApproveClaim(c echo.Context) error {
	var payload approvePayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceClaim, err := do.Invoke[*services.ServiceClaim](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceClaim.ApproveClaim(c.Request().Context(), payload.CustomerID, payload.ActionID, payload.EmployeeName)
	// a repeated approval echoes the stored result
	if err != nil && !errors.Is(err, services.ErrAlreadyApproved) {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

type visitPayload struct {
	CustomerID   string          `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	EmployeeName string          `json:"employee_name"`
}

func (gr *groupAdmin) PostVisit(c echo.Context) error {
	var payload visitPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	amount, err := services.ParseEuroAmount(payload.Amount.String())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	entry, balance, err := serviceLedger.PostEuroVisit(c.Request().Context(), payload.CustomerID, amount, payload.EmployeeName)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"entry":   entry,
		"balance": balance,
	}, nil)
}

type redemptionPayload struct {
	CustomerID   string `json:"customer_id"`
	Points       int    `json:"points"`
	RewardTitle  string `json:"reward_title"`
	EmployeeName string `json:"employee_name"`
}

func (gr *groupAdmin) RedeemPoints(c echo.Context) error {
	var payload redemptionPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	balance, err := serviceLedger.RedeemPoints(c.Request().Context(), payload.CustomerID, payload.Points, payload.RewardTitle, payload.EmployeeName)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]int{"balance": balance}, nil)
}

type birthdayRunPayload struct {
	Date   string `json:"date"`
	DryRun bool   `json:"dry_run"`
}

func (gr *groupAdmin) RunBirthday(c echo.Context) error {
	var payload birthdayRunPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceBirthday, err := do.Invoke[*services.ServiceBirthday](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	summary, err := serviceBirthday.Run(c.Request().Context(), services.BirthdayRunOptions{Date: payload.Date, DryRun: payload.DryRun})
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, summary, nil)
}

func (gr *groupAdmin) LastBirthday(c echo.Context) error {
	serviceBirthday, err := do.Invoke[*services.ServiceBirthday](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	summary, err := serviceBirthday.LastSummary(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, summary, nil)
}

func (gr *groupAdmin) Broadcast(c echo.Context) error {
	var payload models.BroadcastRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceBroadcast, err := do.Invoke[*services.ServiceBroadcast](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	report, err := serviceBroadcast.SendBroadcast(c.Request().Context(), &payload)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, report, nil)
}

// Export answers JSON unless ?format=csv is given.
func (gr *groupAdmin) Export(c echo.Context) error {
	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	rows, err := serviceCustomer.ExportPoints(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if c.QueryParam("format") != "csv" {
		return httpx.RestAbort(c, rows, nil)
	}

	filename := fmt.Sprintf("points-%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(models.PointsExportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (gr *groupAdmin) UpdateCustomer(c echo.Context) error {
	var payload models.CustomerUpdate
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	customer, err := serviceCustomer.UpdateCustomer(c.Request().Context(), c.Param("id"), payload)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, customer, nil)
}

type voucherPayload struct {
	EmployeeName string `json:"employee_name"`
}

func (gr *groupAdmin) RedeemVoucher(c echo.Context) error {
	var payload voucherPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, services.InvalidArgument(err))
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	customer, err := serviceCustomer.RedeemBirthdayVoucher(c.Request().Context(), c.Param("id"), payload.EmployeeName)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, customer, nil)
}

func (gr *groupAdmin) CustomerLedger(c echo.Context) error {
	ctx := c.Request().Context()
	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := serviceLedger.History(ctx, c.Param("id"), limit)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	audit, err := serviceLedger.AuditBalance(ctx, c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"audit":   audit,
		"entries": entries,
	}, nil)
}
