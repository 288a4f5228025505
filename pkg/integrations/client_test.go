package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(time.Second, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.http.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", client.http.Timeout)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	if got := NewHTTPClient(0).Timeout; got != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultTimeout)
	}
}

func TestBearerHeaders(t *testing.T) {
	h := BearerHeaders("tok", "agent/1")
	if h["Authorization"] != "Bearer tok" {
		t.Errorf("Authorization = %q", h["Authorization"])
	}
	if h["User-Agent"] != "agent/1" {
		t.Errorf("User-Agent = %q", h["User-Agent"])
	}
	if _, ok := BearerHeaders("", "")["Authorization"]; ok {
		t.Error("empty token should not set Authorization")
	}
}

func TestWithQuery(t *testing.T) {
	got, err := WithQuery("https://example.com/x?page=9", url.Values{"page": {"0"}, "page_size": {"100"}})
	if err != nil {
		t.Fatalf("WithQuery() error = %v", err)
	}
	want := "https://example.com/x?page=0&page_size=100"
	if got != want {
		t.Errorf("WithQuery() = %q, want %q", got, want)
	}
}

func TestClientGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("X-Test header = %q", got)
		}
		w.Write([]byte(`{"id": 12345678901234567890}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, map[string]string{"X-Test": "yes"})
	var got map[string]any
	if err := client.GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	n, ok := got["id"].(json.Number)
	if !ok {
		t.Fatalf("id decoded as %T, want json.Number", got["id"])
	}
	if n.String() != "12345678901234567890" {
		t.Errorf("id = %s", n)
	}
}

func TestClientPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	var got map[string]any
	if err := client.PostJSON(context.Background(), server.URL, map[string]any{"limit": 5}, &got); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if got["limit"] != json.Number("5") {
		t.Errorf("echoed limit = %v", got["limit"])
	}
}

func TestClientStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  errors.Code
		wantMsg   string
		retryable bool
	}{
		{"unauthorized", 401, `{"message":"bad token"}`, errors.ErrCodeUnauthorized, "bad token", false},
		{"forbidden", 403, `{"error":"no scope"}`, errors.ErrCodeForbidden, "no scope", false},
		{"not found text", 404, "missing", errors.ErrCodeNotFound, "missing", false},
		{"rate limited", 429, "", errors.ErrCodeRateLimited, "HTTP 429 error", true},
		{"server", 502, "", errors.ErrCodeServer, "HTTP 502 error", false},
		{"other", 400, `{"message":"bad limit"}`, errors.ErrCodeAPI, "bad limit", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(time.Second, nil).GetJSON(context.Background(), server.URL, &map[string]any{})
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("error = %v, want code %s", err, tt.wantCode)
			}
			if got := errors.StatusCode(err); got != tt.status {
				t.Errorf("StatusCode = %d, want %d", got, tt.status)
			}
			if got := errors.UserMessage(err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	err := NewClient(time.Second, nil).GetJSON(context.Background(), server.URL, &map[string]any{})
	if !errors.Is(err, errors.ErrCodeMalformedResponse) {
		t.Fatalf("error = %v, want MALFORMED_RESPONSE", err)
	}
	if got := errors.StatusCode(err); got != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", got)
	}
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	err := NewClient(time.Second, nil).GetJSON(context.Background(), addr, &map[string]any{})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK_ERROR", err)
	}
	if got := errors.StatusCode(err); got != 0 {
		t.Errorf("StatusCode = %d, want 0", got)
	}
}

func TestClientContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(time.Second, nil).GetJSON(ctx, server.URL, &map[string]any{})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
