package handler

import (
	"context"
	"strings"

	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthCustomer ctxKey = "AUTH_CUSTOMER"

const HeaderAdminSecret = "X-Admin-Secret"

// Authn will NOT terminate requests without a token; ResolveValidCustomer does.
func Authn(verifier interface {
	Validate(token string) (*models.CustomerFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				return next(c)
			}

			customer, err := verifier.Validate(token)
			if err != nil {
				// the reason stays in the server log
				c.Logger().Warn(err)
				return httpx.RestAbort(c, nil, services.ErrUnauthenticated)
			}

			ctx := context.WithValue(c.Request().Context(), ctxKeyAuthCustomer, customer)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func CustomerFromContext(ctx context.Context) (*models.CustomerFromAuth, error) {
	customer, ok := ctx.Value(ctxKeyAuthCustomer).(*models.CustomerFromAuth)
	if !ok {
		return nil, services.ErrUnauthenticated
	}
	return customer, nil
}

// ResolveValidCustomer registers the caller on first use.
func ResolveValidCustomer(ctx context.Context, container *do.Injector) (*models.Customer, error) {
	auth, err := CustomerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	serviceCustomer, err := do.Invoke[*services.ServiceCustomer](container)
	if err != nil {
		return nil, err
	}

	return serviceCustomer.FindOrCreateCustomer(ctx, auth)
}

func AdminGate(gate *services.ServiceAdminGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := c.Request().Header.Get(HeaderAdminSecret)
			if err := gate.VerifyFrom(c.Request().Context(), c.RealIP(), secret); err != nil {
				return httpx.RestAbort(c, nil, err)
			}
			return next(c)
		}
	}
}
