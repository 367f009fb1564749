package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implements Client against a GoTrue-compatible endpoint.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewHTTP creates a provider client.
func NewHTTP(baseURL, serviceKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: timeout},
	}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*Session, error) {
	body := map[string]string{
		"type":       otpType,
		"token_hash": tokenHash,
	}
	var sess Session
	if err := c.post(ctx, "/verify", "", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	body := map[string]string{
		"auth_code": code,
	}
	var sess Session
	if err := c.post(ctx, "/token?grant_type=pkce", "", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("authclient: decode user: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) post(ctx context.Context, path, bearer string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("authclient: decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request, bearer string) {
	if c.serviceKey != "" {
		req.Header.Set("apikey", c.serviceKey)
	}
	if bearer == "" {
		bearer = c.serviceKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// parseAPIError tolerates both provider error shapes:
// {"error_code":..,"msg":..} and {"error":..,"error_description":..}.
func parseAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var shape struct {
		ErrorCode string `json:"error_code"`
		Msg       string `json:"msg"`
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	_ = json.Unmarshal(raw, &shape)

	apiErr := &APIError{Status: resp.StatusCode}
	switch {
	case shape.ErrorCode != "" || shape.Msg != "":
		apiErr.Code = shape.ErrorCode
		apiErr.Message = shape.Msg
	case shape.Error != "":
		apiErr.Code = shape.Error
		apiErr.Message = shape.ErrorDesc
	default:
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
