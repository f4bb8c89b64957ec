package handler

import (
	"net/http"

	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	// X-Forwarded-For counts only when the peer is a proxy on a private network; X-Real-Ip is never read.
	r.IPExtractor = echo.ExtractIPFromXFFHeader()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "💇")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		gate, err := do.Invoke[*services.ServiceAdminGate](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, HeaderAdminSecret},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.GET("", Hello)

		ra := groupRewardAction{cfg.Container}
		routesAPIv1.GET("/reward-actions", ra.List(true))

		routesAPIv1Me := routesAPIv1.Group("/customers/me")
		routesAPIv1Me.Use(Authn(authentication))
		{
			m := groupCustomer{cfg.Container}
			routesAPIv1Me.GET("", m.Me)
			routesAPIv1Me.GET("/ledger", m.Ledger)
			routesAPIv1Me.GET("/events", m.Events)
			routesAPIv1Me.POST("/claims/:action", m.RequestClaim)
			routesAPIv1Me.POST("/devices", m.RegisterDevice)
			routesAPIv1Me.DELETE("/devices/:token", m.RemoveDevice)
		}

		a := groupAdmin{cfg.Container}
		routesAPIv1.POST("/admin/verify", a.Verify)

		routesAPIv1Admin := routesAPIv1.Group("/admin")
		routesAPIv1Admin.Use(AdminGate(gate))
		{
			routesAPIv1Admin.POST("/claims/approve", a.ApproveClaim)
			routesAPIv1Admin.POST("/visits", a.PostVisit)
			routesAPIv1Admin.POST("/redemptions", a.RedeemPoints)
			routesAPIv1Admin.POST("/birthday/run", a.RunBirthday)
			routesAPIv1Admin.GET("/birthday/last", a.LastBirthday)
			routesAPIv1Admin.POST("/broadcast", a.Broadcast)
			routesAPIv1Admin.GET("/export", a.Export)
			routesAPIv1Admin.PUT("/customers/:id", a.UpdateCustomer)
			routesAPIv1Admin.POST("/customers/:id/voucher/redeem", a.RedeemVoucher)
			routesAPIv1Admin.GET("/customers/:id/ledger", a.CustomerLedger)

			routesAPIv1Admin.GET("/reward-actions", ra.List(false))
			routesAPIv1Admin.POST("/reward-actions", ra.Create)
			routesAPIv1Admin.PUT("/reward-actions/:id", ra.Update)
			routesAPIv1Admin.DELETE("/reward-actions/:id", ra.Delete)
			routesAPIv1Admin.POST("/reward-actions/:id/toggle", ra.Toggle)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
