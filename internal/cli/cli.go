// Package cli implements the semgrep-deps-export command-line interface.
//
// The root command runs the export. Subcommands check the connection, list
// repositories and manage the repository listing cache. The CLI is built
// using cobra and viper and logs through charmbracelet/log.
//
// # Commands
//
//   - (root): export dependencies and vulnerabilities to XLSX reports
//   - check: test the API connection
//   - repos: list repositories, optionally picking one to export
//   - cache: manage the repository listing cache
//   - completion: generate shell completions
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/semgrep-deps-export/pkg/buildinfo"
	"github.com/matzehuels/semgrep-deps-export/pkg/cache"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
	"github.com/matzehuels/semgrep-deps-export/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "semgrep-deps-export"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	Verbose bool // set by -v; pins the debug level
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// applyLogLevel sets the configured level unless -v pinned debug.
func (c *CLI) applyLogLevel(level log.Level) {
	if !c.Verbose {
		c.SetLogLevel(level)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself runs the export.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Export Semgrep Supply Chain dependencies to XLSX reports",
		Long: `semgrep-deps-export fetches every dependency and vulnerability of a Semgrep
deployment and writes them to XLSX reports. Additional reports can be
filtered by bad/review license lists, by license policy and by ecosystem.

Settings come from flags, SEMGREP_* environment variables or a .env file.`,
		Version:      buildinfo.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, nil)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	addExportFlags(root.Flags())
	addConnectionFlags(root.PersistentFlags())

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient creates a Semgrep client for cfg. The returned cache must be
// closed by the caller.
func (c *CLI) newClient(cfg *Config) (*semgrep.Client, cache.Cache, error) {
	if c.Logger.GetLevel() <= log.DebugLevel {
		debug := &debugHooks{logger: c.Logger}
		observability.Register(observability.Hooks{HTTP: debug, Cache: debug, Fetch: debug})
	}

	ch, err := newCache(cfg.CacheURL)
	if err != nil {
		return nil, nil, err
	}
	client, err := semgrep.NewClient(cfg.client(),
		semgrep.WithLogger(c.Logger),
		semgrep.WithCache(ch, nil),
	)
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	return client, ch, nil
}

// newCache opens the repository listing cache named by location. The
// listing is cached only when location names a backend.
func newCache(location string) (cache.Cache, error) {
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return cache.Open(location, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/semgrep-deps-export/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
