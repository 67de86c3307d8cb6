package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type HTTPGateway struct {
	logger      *slog.Logger
	httpClient  *http.Client
	baseURL     string
	authToken   string
	callbackURL string
}

func NewHTTPGateway(logger *slog.Logger, baseURL, authToken, callbackURL string, httpClient *http.Client) *HTTPGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGateway{
		logger:      logger.With("component", "sms_gateway_http"),
		httpClient:  httpClient,
		baseURL:     baseURL,
		authToken:   authToken,
		callbackURL: callbackURL,
	}
}

type linesResponse struct {
	Lines []Line `json:"lines"`
}

type authorizationResponse struct {
	Authorized bool `json:"authorized"`
}

type ussdRequest struct {
	LineID string `json:"line_id"`
	Code   string `json:"code"`
}

type ussdResponse struct {
	Response string `json:"response"`
}

type gatewayErrorResponse struct {
	Error string `json:"error"`
}

func (g *HTTPGateway) Lines(ctx context.Context) ([]Line, error) {
	var resp linesResponse
	if err := g.doJSON(ctx, http.MethodGet, "/api/lines", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

func (g *HTTPGateway) SendAuthorized(ctx context.Context) (bool, error) {
	var resp authorizationResponse
	if err := g.doJSON(ctx, http.MethodGet, "/api/authorization", nil, &resp); err != nil {
		return false, err
	}
	return resp.Authorized, nil
}

func (g *HTTPGateway) SendPart(ctx context.Context, req SendPartRequest) error {
	body := struct {
		SendPartRequest
		CallbackURL string `json:"callback_url"`
	}{SendPartRequest: req, CallbackURL: g.callbackURL}
	g.logger.DebugContext(ctx, "submitting sms part",
		"line_id", req.LineID, "message_id", req.Ref.MessageID, "part_no", req.Ref.PartNo)
	return g.doJSON(ctx, http.MethodPost, "/api/sms/send", body, nil)
}

func (g *HTTPGateway) RunUSSD(ctx context.Context, lineID, code string) (string, error) {
	var resp ussdResponse
	err := g.doJSON(ctx, http.MethodPost, "/api/ussd", ussdRequest{LineID: lineID, Code: code}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (g *HTTPGateway) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		reqBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway request: %w", err)
		}
		bodyReader = bytes.NewReader(reqBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if g.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.authToken)
	}

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.ErrorContext(ctx, "gateway request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("gateway request %s %s failed: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var gwErr gatewayErrorResponse
		msg := fmt.Sprintf("gateway returned status %d", httpResp.StatusCode)
		if json.Unmarshal(respBytes, &gwErr) == nil && gwErr.Error != "" {
			msg = fmt.Sprintf("gateway returned status %d: %s", httpResp.StatusCode, gwErr.Error)
		}
		g.logger.WarnContext(ctx, "gateway request rejected",
			"method", method, "path", path, "status_code", httpResp.StatusCode)
		return fmt.Errorf("%s", msg)
	}

	if respBody != nil {
		if err := json.Unmarshal(respBytes, respBody); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}
