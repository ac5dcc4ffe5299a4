// Package classifier talks to external semantic classification services.
//
// Two response contracts exist, each with its own Backend type:
//
//	ZeroShot   - {"labels": [...], "scores": [...]} (Hugging Face inference API)
//	Completion - {"choices": [{"text": "..."}]} (OpenAI compatible completions)
//
// Chain tries backends in order and moves on only when one fails.
package classifier

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

const (
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)

// Config captures the endpoint settings shared by all backends.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Option customizes a backend.
type Option func(*client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

type client struct {
	name       string
	cfg        Config
	httpClient *http.Client
}

func newClient(name string, cfg Config, opts ...Option) client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	c := client{
		name: name,
		cfg: Config{
			URL:     strings.TrimSpace(cfg.URL),
			Token:   strings.TrimSpace(cfg.Token),
			Timeout: timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// postJSON sends payload and decodes a 2xx body into out.
func (c *client) postJSON(ctx context.Context, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s classifier: encode body: %w", c.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%s classifier: new request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s classifier: http error (timeout=%s): %w", c.name, c.cfg.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s classifier: read body: %w", c.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Backend: c.name, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, c.name, err)
	}
	return nil
}
