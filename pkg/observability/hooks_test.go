package observability

import (
	"context"
	"testing"
	"time"
)

type countingHooks struct {
	NoopExportHooks
	NoopFetchHooks
	NoopCacheHooks
	NoopHTTPHooks
	passes int
}

func (h *countingHooks) OnPassStart(context.Context, string) { h.passes++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Export().(NoopExportHooks); !ok {
		t.Errorf("Export() = %T, want NoopExportHooks", Export())
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Errorf("Fetch() = %T, want NoopFetchHooks", Fetch())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}

	Export().OnPassComplete(ctx, "full", 42, time.Second, nil)
	Fetch().OnRateLimited(ctx, "all", 1, time.Second)
	Fetch().OnRepositorySkipped(ctx, "7", nil)
	Cache().OnCacheSet(ctx, "repositories", 1024)
	HTTP().OnResponse(ctx, "POST", "semgrep.dev", "/api/v1/deployments/1/dependencies", 200, time.Second)
}

func TestRegister(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &countingHooks{}
	Register(Hooks{Export: h, HTTP: h})

	if Export() != ExportHooks(h) {
		t.Errorf("Export() = %T, want the registered hooks", Export())
	}
	if HTTP() != HTTPHooks(h) {
		t.Errorf("HTTP() = %T, want the registered hooks", HTTP())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want it left as NoopCacheHooks", Cache())
	}

	Export().OnPassStart(context.Background(), "full")
	if h.passes != 1 {
		t.Errorf("passes = %d, want 1", h.passes)
	}
}

func TestRegisterKeepsExistingOnNil(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &countingHooks{}
	Register(Hooks{Fetch: h})
	Register(Hooks{Cache: h})

	if Fetch() != FetchHooks(h) {
		t.Errorf("Fetch() = %T, want the first registration kept", Fetch())
	}
	if Cache() != CacheHooks(h) {
		t.Errorf("Cache() = %T, want the second registration", Cache())
	}
}

func TestReset(t *testing.T) {
	h := &countingHooks{}
	Register(Hooks{Export: h, Fetch: h, Cache: h, HTTP: h})
	Reset()

	if _, ok := Export().(NoopExportHooks); !ok {
		t.Errorf("Export() after Reset = %T", Export())
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Errorf("Fetch() after Reset = %T", Fetch())
	}
}
