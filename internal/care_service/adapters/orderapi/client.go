// Package orderapi is the client for the upstream order management system
// this service polls for pending orders and reports notification outcomes to.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/boostgo/customercare/internal/core_domain"
)

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	deviceID   string
	token      string
}

func NewClient(logger *slog.Logger, baseURL, deviceID, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		logger:     logger.With("component", "order_api_client"),
		httpClient: httpClient,
		baseURL:    baseURL,
		deviceID:   deviceID,
		token:      token,
	}
}

type getNewOrderResponse struct {
	Result *core_domain.Order `json:"result"`
}

type updateOrderRequest struct {
	Token   string `json:"token"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// FetchNewOrder returns the next order awaiting a customer notification, or
// nil when the queue is empty.
func (c *Client) FetchNewOrder(ctx context.Context) (*core_domain.Order, error) {
	q := url.Values{}
	q.Set("imei", c.deviceID)
	q.Set("token", c.token)
	reqURL := c.baseURL + "/oam/get-new-order-sms?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order fetch request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "order fetch request failed", "error", err)
		return nil, fmt.Errorf("order fetch failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order fetch response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "order fetch rejected", "status_code", httpResp.StatusCode)
		return nil, fmt.Errorf("order API returned status %d", httpResp.StatusCode)
	}

	var resp getNewOrderResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode order fetch response: %w", err)
	}
	return resp.Result, nil
}

// MarkOrderStatus reports the new status of an order back upstream.
func (c *Client) MarkOrderStatus(ctx context.Context, orderID, status string) error {
	reqBytes, err := json.Marshal(updateOrderRequest{Token: c.token, OrderID: orderID, Status: status})
	if err != nil {
		return fmt.Errorf("failed to marshal order update request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oam/update-order-sms", bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create order update request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "order update request failed", "order_id", orderID, "error", err)
		return fmt.Errorf("order update failed: %w", err)
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "order update rejected", "order_id", orderID, "status_code", httpResp.StatusCode)
		return fmt.Errorf("order API returned status %d", httpResp.StatusCode)
	}
	c.logger.InfoContext(ctx, "order status reported", "order_id", orderID, "status", status)
	return nil
}
