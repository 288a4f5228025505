package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
	"github.com/matzehuels/semgrep-deps-export/pkg/pipeline"
	"github.com/matzehuels/semgrep-deps-export/pkg/report"
)

// runExport loads the configuration and runs the export. When repo is set,
// only that repository is exported.
func (c *CLI) runExport(cmd *cobra.Command, repo *semgrep.Repository) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c.applyLogLevel(cfg.LogLevel)
	c.logStart(cfg)

	client, ch, err := c.newClient(cfg)
	if err != nil {
		return err
	}
	defer ch.Close()

	proc := normalize.NewProcessor(normalize.Options{
		Bad:    cfg.Bad,
		Review: cfg.Review,
		Logger: c.Logger,
	})
	runner := pipeline.NewRunner(client, proc, report.NewWriter(c.Logger), c.Logger)

	opts := cfg.runOptions()
	if repo != nil {
		opts.PerRepository = false
		opts.RepositoryID = repo.ID
		opts.RepositoryName = repo.Name
	}
	var bar *progressbar.ProgressBar
	if opts.PerRepository {
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = newRepositoryBar(total)
			}
			bar.Set(done) // nolint
		}
	}

	prog := newProgress(c.Logger)
	result, err := runner.Run(cmd.Context(), opts)
	if bar != nil {
		bar.Finish() // nolint
	}
	if err != nil {
		printHint(err)
		return err
	}
	prog.done("Export completed")

	printResult(result)
	return nil
}

func (c *CLI) logStart(cfg *Config) {
	c.Logger.Info("starting Semgrep dependencies export",
		"deployment", cfg.DeploymentID,
		"slug", cfg.DeploymentSlug,
		"token", errors.MaskToken(cfg.Token),
		"log_level", cfg.LogLevel)
	if cfg.DeploymentSlug == "" {
		c.Logger.Warn("no deployment slug configured; repository names fall back to Repo-{id}")
	}
	if len(cfg.Bad) > 0 || len(cfg.Review) > 0 {
		c.Logger.Info("license lists", "bad", cfg.Bad, "review", cfg.Review)
	}
}

// newRepositoryBar draws per-repository fetch progress on stderr.
func newRepositoryBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("repositories"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// printHint prints a remedy for common upstream failures.
func printHint(err error) {
	if hint := hintFor(err); hint != "" {
		printWarning("%s", hint)
	}
}

func hintFor(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnauthorized:
		return "Please verify your SEMGREP_APP_TOKEN is correct and has API access."
	case errors.ErrCodeForbidden:
		return "Please ensure your token has Supply Chain API permissions."
	case errors.ErrCodeNotFound:
		return "Please verify your deployment id is correct."
	case errors.ErrCodeRateLimited:
		return "The API kept rate limiting requests; try again later or raise --max-retries."
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPolicy:
		return "Run with --help to see the available flags and SEMGREP_* variables."
	default:
		return ""
	}
}
