package integrations

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient creates an HTTP client with the given per-request timeout.
// A non-positive timeout selects DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// BearerHeaders returns the default headers for a token-authenticated JSON API.
func BearerHeaders(token, userAgent string) map[string]string {
	h := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	if userAgent != "" {
		h["User-Agent"] = userAgent
	}
	return h
}

// WithQuery appends query parameters to a URL, replacing existing values.
func WithQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
