package semgrep

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/semgrep-deps-export/pkg/buildinfo"
	"github.com/matzehuels/semgrep-deps-export/pkg/cache"
	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/httputil"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations"
)

const (
	DefaultBaseURL         = "https://semgrep.dev/api/v1"
	DefaultPageSize        = 1000
	MaxPageSize            = 10000
	DefaultProjectPageSize = 100
	DefaultMaxRetries      = 3
	DefaultTimeout         = 30 * time.Second

	// repositoryBackoffCap bounds a single rate-limit wait in the
	// per-repository strategy; it is first reached on the sixth retry.
	repositoryBackoffCap = 32 * time.Second
	// repositoryMaxRetries is the least number of rate-limit retries per
	// repository page.
	repositoryMaxRetries = 6
	repositoryCacheTTL   = time.Hour
)

// Config holds connection settings for a deployment.
type Config struct {
	Token          string
	DeploymentID   string
	DeploymentSlug string // optional; needed for repository names
	BaseURL        string
	Timeout        time.Duration
	PageSize       int
	MaxRetries     int // rate-limit retries per page
}

// Client fetches dependency and project data for one deployment.
type Client struct {
	*integrations.Client
	cfg    Config
	masked string
	logger *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	sleep  httputil.Sleeper

	mapping RepositoryMapping
	repos   []Repository
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. A nil logger keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache stores the repository listing in ch. A nil keyer selects
// cache.DefaultKeyer.
func WithCache(ch cache.Cache, keyer cache.Keyer) Option {
	return func(c *Client) {
		if ch != nil {
			c.cache = ch
		}
		if keyer != nil {
			c.keyer = keyer
		}
	}
}

// WithSleeper replaces the backoff sleep, mainly for tests.
func WithSleeper(s httputil.Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// NewClient validates cfg, fills in defaults and returns a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := errors.ValidateToken(cfg.Token); err != nil {
		return nil, err
	}
	if err := errors.ValidateDeploymentID(cfg.DeploymentID); err != nil {
		return nil, err
	}
	if err := errors.ValidateDeploymentSlug(cfg.DeploymentSlug); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.PageSize = clampPageSize(cfg.PageSize)
	cfg.MaxRetries = max(cfg.MaxRetries, 0)

	c := &Client{
		Client: integrations.NewClient(cfg.Timeout, integrations.BearerHeaders(cfg.Token, buildinfo.UserAgent())),
		cfg:    cfg,
		masked: errors.MaskToken(cfg.Token),
		logger: log.Default(),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		sleep:  httputil.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the effective configuration, defaults included.
func (c *Client) Config() Config {
	return c.cfg
}

// MaskedToken is the token as it may appear in logs.
func (c *Client) MaskedToken() string {
	return c.masked
}

func clampPageSize(n int) int {
	return min(max(n, 1), MaxPageSize)
}

// backoff is the deployment-wide policy: 2^(attempt-1) seconds, uncapped,
// MaxRetries retries per page.
func (c *Client) backoff() httputil.Backoff {
	return httputil.Backoff{Base: time.Second, Attempts: c.cfg.MaxRetries + 1}
}

// repositoryBackoff is the per-repository policy: waits of 1s, 2s, 4s, 8s,
// 16s, then 32s, with at least repositoryMaxRetries retries per page.
func (c *Client) repositoryBackoff() httputil.Backoff {
	return httputil.Backoff{
		Base:     time.Second,
		Max:      repositoryBackoffCap,
		Attempts: max(c.cfg.MaxRetries, repositoryMaxRetries) + 1,
	}
}

func (c *Client) dependenciesURL() string {
	return fmt.Sprintf("%s/deployments/%s/dependencies", c.cfg.BaseURL, url.PathEscape(c.cfg.DeploymentID))
}

func (c *Client) projectsURL() string {
	return fmt.Sprintf("%s/deployments/%s/projects", c.cfg.BaseURL, url.PathEscape(c.cfg.DeploymentSlug))
}

// describe replaces the generic status error from the HTTP layer with the
// user-facing message for that status. resource names what a 404 refers to.
func (c *Client) describe(err error, resource string) error {
	apiErr, ok := errors.As(err)
	if !ok || apiErr.StatusCode == 0 || apiErr.Code == errors.ErrCodeMalformedResponse {
		return err
	}

	var msg string
	switch apiErr.Code {
	case errors.ErrCodeUnauthorized:
		msg = fmt.Sprintf("Authentication failed. Please check your token (%s)", c.masked)
	case errors.ErrCodeForbidden:
		msg = "Access forbidden. Token may not have required permissions for Supply Chain API"
	case errors.ErrCodeNotFound:
		msg = "Deployment not found: " + resource
	case errors.ErrCodeRateLimited:
		msg = "Rate limit exceeded. Please try again later"
	case errors.ErrCodeServer:
		msg = fmt.Sprintf("Server error (%d): %s", apiErr.StatusCode, apiErr.Message)
	default:
		msg = fmt.Sprintf("API request failed (%d): %s", apiErr.StatusCode, apiErr.Message)
	}

	out := &errors.Error{
		Code:       apiErr.Code,
		Message:    msg,
		StatusCode: apiErr.StatusCode,
		Cause:      apiErr.Cause,
	}
	if httputil.IsRetryable(err) {
		return httputil.Retryable(out)
	}
	return out
}

// CheckConnection fetches a single dependency to verify the token and
// deployment id.
func (c *Client) CheckConnection(ctx context.Context) error {
	c.logger.Info("testing connection", "token", c.masked, "deployment", c.cfg.DeploymentID)
	_, err := c.FetchPage(ctx, NoFilter(), "", 1)
	return err
}

// TestConnection reports whether CheckConnection succeeds. Failures are
// logged, never returned.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.CheckConnection(ctx); err != nil {
		c.logger.Error("connection test failed", "err", err)
		return false
	}
	c.logger.Info("connection test successful")
	return true
}
