package semgrep

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/matzehuels/semgrep-deps-export/pkg/httputil"
	"github.com/matzehuels/semgrep-deps-export/pkg/observability"
)

// FetchPage requests one page of dependencies. pageSize is clamped to
// [1, MaxPageSize]; an empty cursor requests the first page.
func (c *Client) FetchPage(ctx context.Context, f Filter, cursor string, pageSize int) (*Page, error) {
	pageSize = clampPageSize(pageSize)
	body := map[string]any{"limit": pageSize}
	if cursor != "" {
		body["cursor"] = cursor
	}
	if df := f.dependencyFilter(); df != nil {
		body["dependencyFilter"] = df
	}

	c.logger.Debug("fetching dependencies page", "filter", f, "cursor", cursor, "limit", pageSize)

	var resp dependenciesResponse
	if err := c.PostJSON(ctx, c.dependenciesURL(), body, &resp); err != nil {
		return nil, c.describe(err, c.cfg.DeploymentID)
	}
	return resp.page(), nil
}

// FetchAll streams every dependency matching f. A rate-limited page is
// retried with the same cursor; any other error is yielded once and ends
// the sequence. The sequence is single-pass.
func (c *Client) FetchAll(ctx context.Context, f Filter) iter.Seq2[Record, error] {
	return c.paginate(ctx, f, c.backoff())
}

// Dependencies streams every dependency of the deployment.
func (c *Client) Dependencies(ctx context.Context) iter.Seq2[Record, error] {
	return c.FetchAll(ctx, NoFilter())
}

// DependenciesByPolicy streams dependencies under a license policy setting.
func (c *Client) DependenciesByPolicy(ctx context.Context, setting PolicySetting) iter.Seq2[Record, error] {
	return c.FetchAll(ctx, PolicyFilter(setting))
}

// DependenciesByEcosystem streams dependencies of one ecosystem.
func (c *Client) DependenciesByEcosystem(ctx context.Context, ecosystem string) iter.Seq2[Record, error] {
	return c.FetchAll(ctx, EcosystemFilter(ecosystem))
}

func (c *Client) paginate(ctx context.Context, f Filter, b httputil.Backoff) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		var cursor string
		total := 0
		for pageNum := 1; ; pageNum++ {
			var page *Page
			onRetry := func(attempt int, delay time.Duration, err error) {
				c.logger.Warn("rate limited, backing off",
					"filter", f, "page", pageNum, "attempt", attempt, "wait", delay)
				observability.Fetch().OnRateLimited(ctx, f.String(), attempt, delay)
			}
			err := httputil.Retry(ctx, b, c.sleep, onRetry, func() error {
				var err error
				page, err = c.FetchPage(ctx, f, cursor, c.cfg.PageSize)
				return err
			})
			if err != nil {
				yield(nil, fmt.Errorf("fetch %s page %d: %w", f, pageNum, err))
				return
			}

			total += len(page.Dependencies)
			c.logger.Info("fetched page", "filter", f, "page", pageNum,
				"records", len(page.Dependencies), "total", total)

			for _, rec := range page.Dependencies {
				if !yield(rec, nil) {
					return
				}
			}

			if !page.HasMore {
				c.logger.Info("pagination complete", "filter", f, "pages", pageNum, "total", total)
				return
			}
			if page.Cursor == "" {
				c.logger.Warn("server reported more data without a cursor, stopping",
					"filter", f, "page", pageNum)
				return
			}
			cursor = page.Cursor
		}
	}
}
