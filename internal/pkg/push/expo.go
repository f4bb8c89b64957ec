// Package push delivers notification batches to an Expo-compatible push API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"

	"github.com/gojek/heimdall/v7/httpclient"
)

const (
	TICKET_STATUS_OK    = "ok"
	TICKET_STATUS_ERROR = "error"
)

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ticketResponse struct {
	Data   []ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type Client struct {
	http        *httpclient.Client
	url         string
	accessToken string
}

var _ interfaces.PushProvider = (*Client)(nil)

// NewClient never retries; a failed batch is reported to the caller as is.
func NewClient(url string, accessToken string, timeout time.Duration) *Client {
	return &Client{
		http:        httpclient.NewClient(httpclient.WithHTTPTimeout(timeout), httpclient.WithRetryCount(0)),
		url:         url,
		accessToken: accessToken,
	}
}

func (c *Client) SendBatch(ctx context.Context, messages []models.PushMessage) (int, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	res, err := c.http.Do(req)
	if res != nil {
		defer res.Body.Close()
	}
	if err != nil {
		return 0, err
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return 0, fmt.Errorf("push api status %d: %s", res.StatusCode, truncate(b, 200))
	}

	var tickets ticketResponse
	if err := json.Unmarshal(b, &tickets); err != nil {
		return 0, fmt.Errorf("push api response: %w", err)
	}
	if len(tickets.Errors) > 0 {
		return 0, fmt.Errorf("push api error %s: %s", tickets.Errors[0].Code, tickets.Errors[0].Message)
	}

	accepted := 0
	for _, t := range tickets.Data {
		if t.Status == TICKET_STATUS_OK {
			accepted++
		}
	}
	return accepted, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
