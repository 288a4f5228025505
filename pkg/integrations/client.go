package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/httputil"
	"github.com/matzehuels/semgrep-deps-export/pkg/observability"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client provides shared HTTP functionality for upstream API clients.
// It applies default headers, classifies failures, and decodes JSON.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given timeout and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(timeout),
		headers: headers,
	}
}

// GetJSON performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return c.Do(ctx, http.MethodGet, url, nil, v)
}

// PostJSON marshals body, POSTs it, and JSON-decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	return c.Do(ctx, http.MethodPost, url, body, v)
}

// Do sends a request with an optional JSON body and decodes the JSON
// response into v. Numbers are decoded as json.Number.
func (c *Client) Do(ctx context.Context, method, rawURL string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &errors.Error{
			Code:       errors.ErrCodeMalformedResponse,
			Message:    fmt.Sprintf("invalid JSON response from %s %s", method, path),
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// checkStatus converts a non-2xx response into a structured error. Rate
// limiting is marked retryable; everything else is permanent.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	code := errors.CodeForStatus(resp.StatusCode)
	err := errors.NewStatus(code, resp.StatusCode, "%s", errorDetail(resp))
	if code == errors.ErrCodeRateLimited {
		return httputil.Retryable(err)
	}
	return err
}

// errorDetail extracts the "message" field of a JSON error body, falling
// back to the raw body text and finally to a generic status line.
func errorDetail(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d error", resp.StatusCode)
}
