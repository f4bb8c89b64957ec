package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const eventsKeepAlive = 25 * time.Second

// Events streams the caller's balance changes as server-sent events until the client goes away.
func (gr *groupCustomer) Events(c echo.Context) error {
	ctx := c.Request().Context()
	customer, err := ResolveValidCustomer(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	feed, err := do.Invoke[*services.ChangeFeed](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	changes, cancel := feed.Subscribe(customer.ID)
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	// the current balance first, so clients need no extra request
	if err := writeEvent(w, services.BalanceChange{CustomerID: customer.ID, Balance: customer.PointsBalance}); err != nil {
		return nil
	}

	ticker := time.NewTicker(eventsKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := writeEvent(w, change); err != nil {
				return nil
			}
		}
	}
}

func writeEvent(w *echo.Response, change services.BalanceChange) error {
	b, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: balance\ndata: %s\n\n", b); err != nil {
		return err
	}
	w.Flush()
	return nil
}
