// Package observability lets callers observe an export without the
// libraries depending on a metrics or tracing backend.
//
// Four event families are emitted:
//
//   - [ExportHooks]: start and end of each report pass
//   - [FetchHooks]: rate-limit backoffs and skipped repositories
//   - [CacheHooks]: repository listing cache lookups
//   - [HTTPHooks]: upstream API requests
//
// Every family defaults to a no-op. The CLI registers a logging
// implementation at debug level:
//
//	observability.Register(observability.Hooks{
//	    HTTP:  debug,
//	    Cache: debug,
//	})
//
// Libraries read the current hooks at the point of use:
//
//	observability.Export().OnPassStart(ctx, "policy_block")
//	// fetch, normalize, render
//	observability.Export().OnPassComplete(ctx, "policy_block", rows, elapsed, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ExportHooks receives pipeline events. A pass is one fetch, normalize and
// render cycle that produces one workbook.
type ExportHooks interface {
	OnPassStart(ctx context.Context, kind string)
	OnPassComplete(ctx context.Context, kind string, rows int, duration time.Duration, err error)
}

// FetchHooks receives events from the paged dependency fetch.
type FetchHooks interface {
	// OnRateLimited fires before the client sleeps on a 429.
	OnRateLimited(ctx context.Context, filter string, attempt int, wait time.Duration)

	// OnRepositorySkipped fires when one repository of a per-repository
	// fetch fails and is left out of the export.
	OnRepositorySkipped(ctx context.Context, repositoryID string, err error)
}

// CacheHooks receives repository listing cache events.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives upstream API events.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError covers transport failures and timeouts, not non-2xx statuses.
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExportHooks ignores every export event.
type NoopExportHooks struct{}

func (NoopExportHooks) OnPassStart(context.Context, string)                               {}
func (NoopExportHooks) OnPassComplete(context.Context, string, int, time.Duration, error) {}

// NoopFetchHooks ignores every fetch event.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnRateLimited(context.Context, string, int, time.Duration) {}
func (NoopFetchHooks) OnRepositorySkipped(context.Context, string, error)        {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                  {}

// =============================================================================
// Registry
// =============================================================================

// Hooks bundles one implementation per event family. Nil fields leave the
// current registration in place.
type Hooks struct {
	Export ExportHooks
	Fetch  FetchHooks
	Cache  CacheHooks
	HTTP   HTTPHooks
}

func noop() *Hooks {
	return &Hooks{
		Export: NoopExportHooks{},
		Fetch:  NoopFetchHooks{},
		Cache:  NoopCacheHooks{},
		HTTP:   NoopHTTPHooks{},
	}
}

var current atomic.Pointer[Hooks]

func init() {
	current.Store(noop())
}

// Register installs the non-nil hooks of h. Call it at startup, before any
// export runs.
func Register(h Hooks) {
	for {
		old := current.Load()
		next := *old
		if h.Export != nil {
			next.Export = h.Export
		}
		if h.Fetch != nil {
			next.Fetch = h.Fetch
		}
		if h.Cache != nil {
			next.Cache = h.Cache
		}
		if h.HTTP != nil {
			next.HTTP = h.HTTP
		}
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks { return current.Load().Export }

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks { return current.Load().Fetch }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().Cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().HTTP }

// Reset restores the no-op hooks. Tests use it to undo Register.
func Reset() {
	current.Store(noop())
}
