// Package pipeline orchestrates a complete export run.
//
// A run is a sequence of passes. Each pass is one fetch → normalize → render
// cycle and produces one spreadsheet:
//
//  1. Full: every dependency of the deployment (or of each repository when
//     per-repository fetching is enabled). A full pass with no rows fails
//     the run.
//  2. Licenses: the rows of the full pass flagged bad or review. No refetch.
//  3. Policy block / policy comment: server-side license policy filters.
//  4. Ecosystem: one pass per configured ecosystem.
//
// Filtered passes that produce no rows are logged and skipped.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, processor, nil, logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    DeploymentID: "12345",
//	    PolicyBlock:  true,
//	    Ecosystems:   []string{"pypi"},
//	})
//	for _, f := range result.Files {
//	    fmt.Println(f.Kind, f.Path)
//	}
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
	"github.com/matzehuels/semgrep-deps-export/pkg/report"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a run.
type Options struct {
	DeploymentID   string // used in file names
	DeploymentSlug string // enables the repository name mapping

	// OutputPath, when set, is the exact path of the full report.
	OutputPath string
	// OutputDir holds every other report. It defaults to the directory of
	// OutputPath, or report.DefaultOutputDir.
	OutputDir string

	PerRepository bool // fetch each repository separately for the full pass
	LicenseReport bool // write the bad/review license subset
	PolicyBlock   bool
	PolicyComment bool
	Ecosystems    []string

	// RepositoryID restricts the run to one repository. Only the repository
	// report and its license subset are written.
	RepositoryID   string
	RepositoryName string

	// Progress receives per-repository fetch progress.
	Progress func(done, total int)

	RunID string           // defaults to a random UUID
	Now   func() time.Time // defaults to time.Now
}

// Validate checks options that do not depend on the network.
func (o *Options) Validate() error {
	if err := errors.ValidateDeploymentID(o.DeploymentID); err != nil {
		return err
	}
	if o.RepositoryID != "" && o.PerRepository {
		return errors.New(errors.ErrCodeInvalidConfig, "a repository filter cannot be combined with per-repository fetching")
	}
	for _, eco := range o.Ecosystems {
		if eco == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "empty ecosystem name")
		}
	}
	return nil
}

// outputDir is where every report but the full one is written.
func (o *Options) outputDir() string {
	switch {
	case o.OutputDir != "":
		return o.OutputDir
	case o.OutputPath != "":
		return filepath.Dir(o.OutputPath)
	default:
		return report.DefaultOutputDir
	}
}

// =============================================================================
// Result - Run Output
// =============================================================================

// File is one written report.
type File struct {
	Kind      report.Kind
	Qualifier string // ecosystem or repository name, empty otherwise
	Path      string
	Summary   normalize.Summary
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Files    []File
	Skipped  []report.Kind // filtered passes that produced no rows
	Duration time.Duration

	// Repositories is set when the full pass fetched per repository.
	Repositories *semgrep.RepositoryStats
}

// File returns the first written report of the given kind.
func (r *Result) File(kind report.Kind) (File, bool) {
	for _, f := range r.Files {
		if f.Kind == kind {
			return f, true
		}
	}
	return File{}, false
}
