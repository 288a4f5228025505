package semgrep

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"net/url"
	"strconv"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/httputil"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations"
	"github.com/matzehuels/semgrep-deps-export/pkg/observability"
)

// FetchProjects requests one page of the project listing. Pages start at 0.
// It requires a deployment slug.
func (c *Client) FetchProjects(ctx context.Context, page, pageSize int) ([]Repository, error) {
	if c.cfg.DeploymentSlug == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "deployment slug is required to list projects")
	}
	rawURL, err := integrations.WithQuery(c.projectsURL(), url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(pageSize)},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "build projects url")
	}

	var resp projectsResponse
	if err := c.GetJSON(ctx, rawURL, &resp); err != nil {
		return nil, c.describe(err, c.cfg.DeploymentSlug)
	}

	repos := make([]Repository, 0, len(resp.Projects))
	for _, p := range resp.Projects {
		if r, ok := repositoryFromProject(p); ok {
			repos = append(repos, r)
		}
	}
	c.logger.Debug("fetched projects page", "page", page, "projects", len(resp.Projects))
	return repos, nil
}

// ListAllRepositories walks the project listing until a page comes back
// empty or shorter than pageSize.
func (c *Client) ListAllRepositories(ctx context.Context, pageSize int) ([]Repository, error) {
	if pageSize <= 0 {
		pageSize = DefaultProjectPageSize
	}
	var all []Repository
	for page := 0; ; page++ {
		repos, err := c.FetchProjects(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list repositories page %d: %w", page, err)
		}
		all = append(all, repos...)
		if len(repos) == 0 || len(repos) < pageSize {
			break
		}
	}
	c.logger.Info("listed repositories", "count", len(all))
	return all, nil
}

// repositories returns the repository listing, consulting the cache first.
func (c *Client) repositories(ctx context.Context) ([]Repository, error) {
	key := c.keyer.RepositoriesKey(c.cfg.BaseURL, c.cfg.DeploymentSlug)
	hooks := observability.Cache()

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("repository cache read failed", "err", err)
	} else if ok {
		var repos []Repository
		if err := json.Unmarshal(data, &repos); err == nil {
			hooks.OnCacheHit(ctx, "repositories")
			c.logger.Debug("repository listing from cache", "count", len(repos))
			return repos, nil
		}
	}
	hooks.OnCacheMiss(ctx, "repositories")

	repos, err := c.ListAllRepositories(ctx, DefaultProjectPageSize)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(repos); err == nil {
		if err := c.cache.Set(ctx, key, data, repositoryCacheTTL); err != nil {
			c.logger.Warn("repository cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "repositories", len(data))
		}
	}
	return repos, nil
}

// ForgetRepositories drops the cached repository listing of the deployment,
// so the next lookup lists projects again.
func (c *Client) ForgetRepositories(ctx context.Context) error {
	c.mapping, c.repos = nil, nil
	return c.cache.Delete(ctx, c.keyer.RepositoriesKey(c.cfg.BaseURL, c.cfg.DeploymentSlug))
}

// RepositoryMapping returns id → repository for the deployment. It is built
// once per Client. Without a slug, or when the listing fails, the mapping is
// empty and callers fall back to "Repo-{id}" names.
func (c *Client) RepositoryMapping(ctx context.Context) RepositoryMapping {
	if c.mapping != nil {
		return c.mapping
	}
	if c.cfg.DeploymentSlug == "" {
		c.logger.Warn("no deployment slug configured, repository names will use ids")
		return RepositoryMapping{}
	}

	repos, err := c.repositories(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch repository information", "err", err)
		return RepositoryMapping{}
	}
	m := make(RepositoryMapping, len(repos))
	for _, r := range repos {
		m[r.ID] = r
	}
	c.mapping = m
	c.repos = repos
	c.logger.Info("built repository mapping", "repositories", len(m))
	return m
}

// RepositoryStats tracks a per-repository fetch. It is updated while the
// sequence returned by DependenciesByRepository is consumed.
type RepositoryStats struct {
	Total     int  // repositories listed
	Succeeded int  // repositories fetched completely
	Failed    int  // repositories skipped after an error
	Records   int  // records yielded
	FellBack  bool // listing failed; the deployment-wide fetch was used

	// Progress, when set, is called after each repository.
	Progress func(done, total int)
}

// DependenciesByRepository fetches each repository separately and tags
// every record with "repository_details". If the repository listing is
// unavailable it falls back to the deployment-wide fetch. A repository
// that fails is logged, counted and skipped; its records are not yielded.
func (c *Client) DependenciesByRepository(ctx context.Context) (iter.Seq2[Record, error], *RepositoryStats) {
	stats := &RepositoryStats{}
	seq := func(yield func(Record, error) bool) {
		repos, err := c.Repositories(ctx)
		if ctx.Err() != nil {
			yield(nil, ctx.Err())
			return
		}
		if err != nil || len(repos) == 0 {
			c.logger.Warn("repository listing unavailable, falling back to deployment-wide fetch", "err", err)
			stats.FellBack = true
			for rec, err := range c.FetchAll(ctx, NoFilter()) {
				if err == nil {
					stats.Records++
				}
				if !yield(rec, err) {
					return
				}
			}
			return
		}

		stats.Total = len(repos)
		b := c.repositoryBackoff()
		for i, repo := range repos {
			c.logger.Info("fetching repository", "repository", repo.Name, "id", repo.ID,
				"progress", fmt.Sprintf("%d/%d", i+1, len(repos)))

			records, err := c.collectRepository(ctx, repo, b)
			switch {
			case err != nil && ctx.Err() != nil:
				yield(nil, err)
				return
			case err != nil:
				stats.Failed++
				c.logger.Error("skipping repository", "repository", repo.Name, "id", repo.ID, "err", err)
				observability.Fetch().OnRepositorySkipped(ctx, repo.ID, err)
			default:
				stats.Succeeded++
				for _, rec := range records {
					stats.Records++
					if !yield(rec, nil) {
						return
					}
				}
			}
			if stats.Progress != nil {
				stats.Progress(i+1, len(repos))
			}
		}
		c.logger.Info("per-repository fetch complete", "repositories", stats.Total,
			"failed", stats.Failed, "records", stats.Records)
	}
	return seq, stats
}

// Repositories returns the cached repository listing. Unlike
// RepositoryMapping it surfaces the error, so the per-repository strategy
// can fall back.
func (c *Client) Repositories(ctx context.Context) ([]Repository, error) {
	if len(c.repos) > 0 {
		return c.repos, nil
	}
	if c.cfg.DeploymentSlug == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "deployment slug is required for per-repository fetch")
	}
	return c.repositories(ctx)
}

// collectRepository buffers the full dependency listing of one repository.
func (c *Client) collectRepository(ctx context.Context, repo Repository, b httputil.Backoff) ([]Record, error) {
	details := repo.details()
	var records []Record
	for rec, err := range c.paginate(ctx, RepositoryFilter(repo.ID), b) {
		if err != nil {
			return nil, err
		}
		if rec != nil {
			rec["repository_details"] = maps.Clone(details)
		}
		records = append(records, rec)
	}
	return records, nil
}
