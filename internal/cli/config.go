package cli

import (
	stderrors "errors"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
	"github.com/matzehuels/semgrep-deps-export/pkg/pipeline"
)

// envPrefix is prepended to every environment variable.
const envPrefix = "SEMGREP"

// defaultEnvFile is loaded when --env-file is not given.
const defaultEnvFile = ".env"

// Config is the resolved configuration of one invocation.
type Config struct {
	Token          string
	DeploymentID   string
	DeploymentSlug string
	BaseURL        string
	Timeout        time.Duration
	PageSize       int
	MaxRetries     int
	CacheURL       string
	LogLevel       log.Level

	OutputPath    string
	OutputDir     string
	Bad           []string
	Review        []string
	PolicyFile    string
	PolicyBlock   bool
	PolicyComment bool
	Ecosystems    []string
	PerRepository bool
}

// Flags whose environment variable does not follow SEMGREP_<FLAG_NAME>.
var envAliases = map[string]string{
	"token":          "SEMGREP_APP_TOKEN",
	"output":         "SEMGREP_OUTPUT_PATH",
	"policy-block":   "SEMGREP_POLICY_LICENSES_BLOCK",
	"policy-comment": "SEMGREP_POLICY_LICENSES_COMMENT",
}

// addConnectionFlags registers the flags every command needs to reach the API.
func addConnectionFlags(flags *pflag.FlagSet) {
	flags.String("token", "", "Semgrep API token (env SEMGREP_APP_TOKEN)")
	flags.String("deployment-id", "", "Semgrep deployment id (env SEMGREP_DEPLOYMENT_ID)")
	flags.String("deployment-slug", "", "deployment slug, needed for repository names (env SEMGREP_DEPLOYMENT_SLUG)")
	flags.String("base-url", semgrep.DefaultBaseURL, "Semgrep API base URL")
	flags.Duration("timeout", semgrep.DefaultTimeout, "per-request timeout")
	flags.Int("page-size", semgrep.DefaultPageSize, "dependencies per page (1-10000)")
	flags.Int("max-retries", semgrep.DefaultMaxRetries, "rate-limit retries per page")
	flags.String("cache-url", "none", "repository listing cache: none, file:// (user cache dir), file://<dir> or redis://<host>/<db>")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
}

// addExportFlags registers the flags of the export itself.
func addExportFlags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "path of the full report (env SEMGREP_OUTPUT_PATH)")
	flags.String("output-dir", "", "directory for generated reports (default ./output)")
	flags.String("bad-licenses", "", "comma-separated licenses flagged as bad")
	flags.String("review-licenses", "", "comma-separated licenses flagged for review")
	flags.String("policy-file", "", "TOML file with bad and review license lists")
	flags.Bool("policy-block", false, "also export dependencies under the blocking license policy")
	flags.Bool("policy-comment", false, "also export dependencies under the commenting license policy")
	flags.String("ecosystems", "", "comma-separated ecosystems to export separately (e.g. pypi,npm)")
	flags.Bool("per-repository", false, "fetch dependencies one repository at a time")
}

// loadConfig resolves flags, environment and dotenv file into a Config.
// Flags win over the environment, which wins over flag defaults.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	flags := cmd.Flags()
	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile, flags.Changed("env-file")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "bind %s", env)
		}
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "bind flags")
	}

	level, err := parseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Token:          strings.TrimSpace(v.GetString("token")),
		DeploymentID:   strings.TrimSpace(v.GetString("deployment-id")),
		DeploymentSlug: strings.TrimSpace(v.GetString("deployment-slug")),
		BaseURL:        v.GetString("base-url"),
		Timeout:        v.GetDuration("timeout"),
		PageSize:       v.GetInt("page-size"),
		MaxRetries:     v.GetInt("max-retries"),
		CacheURL:       v.GetString("cache-url"),
		LogLevel:       level,

		OutputPath:    v.GetString("output"),
		OutputDir:     v.GetString("output-dir"),
		Bad:           normalize.SplitList(v.GetString("bad-licenses")),
		Review:        normalize.SplitList(v.GetString("review-licenses")),
		PolicyFile:    v.GetString("policy-file"),
		PolicyBlock:   v.GetBool("policy-block"),
		PolicyComment: v.GetBool("policy-comment"),
		Ecosystems:    normalize.SplitList(v.GetString("ecosystems")),
		PerRepository: v.GetBool("per-repository"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = semgrep.DefaultBaseURL
	}
	if v.GetBool("ecosystem-pypi") && !slices.Contains(cfg.Ecosystems, "pypi") {
		cfg.Ecosystems = append(cfg.Ecosystems, "pypi")
	}

	if cfg.PolicyFile != "" {
		policy, err := normalize.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		merged := policy.Merge(cfg.Bad, cfg.Review)
		cfg.Bad, cfg.Review = merged.Bad, merged.Review
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing default file is ignored; a missing explicit file is an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		return nil
	default:
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load env file %s", path)
	}
}

// Validate checks the configuration before any network call.
func (c *Config) Validate() error {
	if err := errors.ValidateToken(c.Token); err != nil {
		return err
	}
	if err := errors.ValidateDeploymentID(c.DeploymentID); err != nil {
		return err
	}
	if err := errors.ValidateDeploymentSlug(c.DeploymentSlug); err != nil {
		return err
	}
	if err := errors.ValidateURL(c.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid base URL")
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 1 || c.PageSize > semgrep.MaxPageSize {
		return errors.New(errors.ErrCodeInvalidConfig, "page size must be between 1 and %d, got %d", semgrep.MaxPageSize, c.PageSize)
	}
	if c.MaxRetries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// client returns the Semgrep client settings.
func (c *Config) client() semgrep.Config {
	return semgrep.Config{
		Token:          c.Token,
		DeploymentID:   c.DeploymentID,
		DeploymentSlug: c.DeploymentSlug,
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		PageSize:       c.PageSize,
		MaxRetries:     c.MaxRetries,
	}
}

// runOptions returns the export run options.
func (c *Config) runOptions() pipeline.Options {
	return pipeline.Options{
		DeploymentID:   c.DeploymentID,
		DeploymentSlug: c.DeploymentSlug,
		OutputPath:     c.OutputPath,
		OutputDir:      c.OutputDir,
		PerRepository:  c.PerRepository,
		LicenseReport:  len(c.Bad) > 0 || len(c.Review) > 0,
		PolicyBlock:    c.PolicyBlock,
		PolicyComment:  c.PolicyComment,
		Ecosystems:     c.Ecosystems,
	}
}
