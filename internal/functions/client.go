package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snapwin-admin/utils"
)

// Client invokes named remote functions over HTTP. Calls go through a
// circuit breaker so a misbehaving function host fails fast instead of
// tying up handlers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *utils.CircuitBreaker
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    utils.NewCircuitBreaker("remote-functions"),
	}
}

// Invoke posts the payload to the named function and decodes the JSON
// response into out. A nil out discards the response body.
func (c *Client) Invoke(ctx context.Context, name string, payload any, out any) error {
	_, err := c.breaker.Execute(ctx, func() (any, error) {
		return nil, c.invoke(ctx, name, payload, out)
	})
	return err
}

func (c *Client) invoke(ctx context.Context, name string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("invoke %s: status %d: %s", name, resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}
