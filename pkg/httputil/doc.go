// Package httputil provides HTTP retry utilities for the upstream API client.
//
// # Overview
//
// The Semgrep API answers bursts of pagination requests with HTTP 429. This
// package provides the backoff used to wait those out:
//
//   - [Backoff]: exponential delay policy with an optional cap
//   - [Retry]: repeats an operation while it fails with a [RetryableError]
//
// # Backoff
//
// The delay before retry n (counted from 1) is Base * 2^(n-1). A zero Max
// leaves the growth uncapped; a non-zero Max clamps every delay:
//
//	deploymentWide := httputil.Backoff{Base: time.Second, Attempts: 4}
//	perRepository := httputil.Backoff{Base: time.Second, Max: 32 * time.Second, Attempts: 7}
//
// Attempts bounds the total number of calls, including the first. Zero or a
// negative value retries until the operation succeeds, fails permanently, or
// the context is cancelled.
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried; anything else is
// returned immediately so that authentication and server failures surface
// without delay:
//
//	err := httputil.Retry(ctx, policy, httputil.Sleep, nil, func() error {
//	    return fetchPage(ctx, cursor)
//	})
//
// Sleeping is injected through [Sleeper] so tests can observe the schedule
// without waiting for it.
package httputil
