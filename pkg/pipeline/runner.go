package pipeline

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
	"github.com/matzehuels/semgrep-deps-export/pkg/normalize"
	"github.com/matzehuels/semgrep-deps-export/pkg/observability"
	"github.com/matzehuels/semgrep-deps-export/pkg/report"
)

// Source is the subset of the Semgrep client a run needs.
type Source interface {
	CheckConnection(ctx context.Context) error
	RepositoryMapping(ctx context.Context) semgrep.RepositoryMapping
	Dependencies(ctx context.Context) iter.Seq2[semgrep.Record, error]
	DependenciesByRepository(ctx context.Context) (iter.Seq2[semgrep.Record, error], *semgrep.RepositoryStats)
	DependenciesByPolicy(ctx context.Context, setting semgrep.PolicySetting) iter.Seq2[semgrep.Record, error]
	DependenciesByEcosystem(ctx context.Context, ecosystem string) iter.Seq2[semgrep.Record, error]
	FetchAll(ctx context.Context, f semgrep.Filter) iter.Seq2[semgrep.Record, error]
}

var _ Source = (*semgrep.Client)(nil)

// Runner executes export runs. It reuses one Processor, resetting it
// between passes, so it is not safe for concurrent runs.
type Runner struct {
	Source    Source
	Processor *normalize.Processor
	Writer    *report.Writer
	Logger    *log.Logger
}

// NewRunner creates a runner.
// If proc is nil, a Processor without license lists is used.
// If w is nil, a Writer sharing the runner's logger is used.
func NewRunner(src Source, proc *normalize.Processor, w *report.Writer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if proc == nil {
		proc = normalize.NewProcessor(normalize.Options{Logger: logger})
	}
	if w == nil {
		w = report.NewWriter(logger)
	}
	return &Runner{
		Source:    src,
		Processor: proc,
		Writer:    w,
		Logger:    logger,
	}
}

// Run executes every pass enabled by opts.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	start := opts.Now()
	result := &Result{RunID: opts.RunID}

	if err := r.Source.CheckConnection(ctx); err != nil {
		return nil, fmt.Errorf("connection test: %w", err)
	}
	r.Logger.Info("API connection test successful")

	if opts.DeploymentSlug != "" {
		mapping := r.Source.RepositoryMapping(ctx)
		r.Processor.SetRepositories(mapping.Names())
	}

	// Stage 1: Full (or single repository)
	kind, qualifier := report.KindFull, ""
	var seq iter.Seq2[semgrep.Record, error]
	switch {
	case opts.RepositoryID != "":
		kind, qualifier = report.KindRepository, opts.RepositoryName
		if qualifier == "" {
			qualifier = opts.RepositoryID
		}
		seq = r.Source.FetchAll(ctx, semgrep.RepositoryFilter(opts.RepositoryID))
	case opts.PerRepository:
		var stats *semgrep.RepositoryStats
		seq, stats = r.Source.DependenciesByRepository(ctx)
		stats.Progress = opts.Progress
		result.Repositories = stats
	default:
		seq = r.Source.Dependencies(ctx)
	}

	deps, vulns, err := r.collect(ctx, kind, seq)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "no dependencies were processed; check the API response and logs")
	}
	full := r.Processor.Summary()
	r.logSummary(kind, full)
	f, err := r.render(ctx, &opts, kind, qualifier, deps, vulns, full)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, f)

	// Stage 2: License subset of the rows above
	if opts.LicenseReport {
		subDeps, subVulns := normalize.LicenseSubset(deps, vulns)
		if len(subDeps) == 0 {
			r.skip(result, report.KindLicenses, "")
		} else {
			summary := normalize.Summarize(subDeps, subVulns, full.Processing)
			f, err := r.render(ctx, &opts, report.KindLicenses, "", subDeps, subVulns, summary)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, f)
		}
	}

	if opts.RepositoryID != "" {
		return r.finish(result, start, opts), nil
	}

	// Stage 3: Server-side filters, each refetched from scratch
	var passes []filtered
	if opts.PolicyBlock {
		passes = append(passes, filtered{kind: report.KindPolicyBlock, fetch: func() iter.Seq2[semgrep.Record, error] {
			return r.Source.DependenciesByPolicy(ctx, semgrep.PolicyBlock)
		}})
	}
	if opts.PolicyComment {
		passes = append(passes, filtered{kind: report.KindPolicyComment, fetch: func() iter.Seq2[semgrep.Record, error] {
			return r.Source.DependenciesByPolicy(ctx, semgrep.PolicyComment)
		}})
	}
	for _, eco := range opts.Ecosystems {
		passes = append(passes, filtered{kind: report.KindEcosystem, qualifier: eco, fetch: func() iter.Seq2[semgrep.Record, error] {
			return r.Source.DependenciesByEcosystem(ctx, eco)
		}})
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, ok, err := r.filteredPass(ctx, &opts, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.skip(result, p.kind, p.qualifier)
			continue
		}
		result.Files = append(result.Files, f)
	}

	return r.finish(result, start, opts), nil
}

// filtered is a pass that refetches with a server-side filter.
type filtered struct {
	kind      report.Kind
	qualifier string
	fetch     func() iter.Seq2[semgrep.Record, error]
}

func (r *Runner) filteredPass(ctx context.Context, opts *Options, p filtered) (File, bool, error) {
	r.Logger.Info("starting filtered export", "kind", p.kind, "filter", p.qualifier)
	deps, vulns, err := r.collect(ctx, p.kind, p.fetch())
	if err != nil {
		return File{}, false, err
	}
	if len(deps) == 0 {
		return File{}, false, nil
	}
	summary := r.Processor.Summary()
	r.logSummary(p.kind, summary)
	f, err := r.render(ctx, opts, p.kind, p.qualifier, deps, vulns, summary)
	return f, err == nil, err
}

// collect resets the processor and drains seq into it.
func (r *Runner) collect(ctx context.Context, kind report.Kind, seq iter.Seq2[semgrep.Record, error]) ([]normalize.Dependency, []normalize.Vulnerability, error) {
	hooks := observability.Export()
	hooks.OnPassStart(ctx, string(kind))
	start := time.Now()

	r.Processor.Reset()
	deps, vulns, err := r.Processor.ProcessAll(seq)
	hooks.OnPassComplete(ctx, string(kind), len(deps), time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("%s export: %w", kind, err)
	}

	r.Logger.Info("processed dependencies",
		"kind", kind,
		"dependencies", len(deps),
		"vulnerabilities", len(vulns),
		"duration", time.Since(start).Round(time.Millisecond))
	return deps, vulns, nil
}

func (r *Runner) render(ctx context.Context, opts *Options, kind report.Kind, qualifier string, deps []normalize.Dependency, vulns []normalize.Vulnerability, summary normalize.Summary) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	now := opts.Now()
	path := report.Path(opts.outputDir(), kind, opts.DeploymentID, qualifier, now)
	if kind == report.KindFull && opts.OutputPath != "" {
		path = opts.OutputPath
	}

	err := r.Writer.Write(path, report.Report{
		Title:           report.Title(kind, qualifier),
		Kind:            kind,
		DeploymentID:    opts.DeploymentID,
		RunID:           opts.RunID,
		GeneratedAt:     now,
		Dependencies:    deps,
		Vulnerabilities: vulns,
		Summary:         summary,
	})
	if err != nil {
		return File{}, fmt.Errorf("write %s report: %w", kind, err)
	}
	r.Logger.Info("excel export completed", "kind", kind, "path", path)
	return File{Kind: kind, Qualifier: qualifier, Path: path, Summary: summary}, nil
}

func (r *Runner) skip(result *Result, kind report.Kind, qualifier string) {
	r.Logger.Warn("no dependencies matched, skipping report", "kind", kind, "filter", qualifier)
	result.Skipped = append(result.Skipped, kind)
}

func (r *Runner) finish(result *Result, start time.Time, opts Options) *Result {
	result.Duration = opts.Now().Sub(start)
	r.Logger.Info("export completed successfully",
		"files", len(result.Files),
		"skipped", len(result.Skipped),
		"run", result.RunID)
	return result
}

func (r *Runner) logSummary(kind report.Kind, s normalize.Summary) {
	r.Logger.Info("processing summary",
		"kind", kind,
		"dependencies", s.Dependencies.Total,
		"with_vulnerabilities", s.Dependencies.WithVulnerabilities,
		"with_bad_licenses", s.Dependencies.WithBadLicenses,
		"with_review_licenses", s.Dependencies.WithReviewLicenses)
	r.Logger.Info("vulnerability summary",
		"kind", kind,
		"total", s.Vulnerabilities.Total,
		"critical", s.Vulnerabilities.Critical,
		"high", s.Vulnerabilities.High,
		"medium", s.Vulnerabilities.Medium,
		"low", s.Vulnerabilities.Low)
	if s.Processing.ValidationErrors > 0 || s.Processing.TransformationErrors > 0 {
		r.Logger.Warn("records dropped",
			"kind", kind,
			"validation_errors", s.Processing.ValidationErrors,
			"transformation_errors", s.Processing.TransformationErrors)
	}
}
