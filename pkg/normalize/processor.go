package normalize

import (
	"fmt"
	"iter"

	"github.com/charmbracelet/log"
)

// sampleRows is how many rows are logged at info level per pass.
const sampleRows = 3

// Options configures a Processor.
type Options struct {
	Bad          []string          // licenses flagged as bad
	Review       []string          // licenses flagged for review
	Repositories map[string]string // repository id → display name
	Logger       *log.Logger
}

// Processor normalizes records and accumulates rows and counters. It is not
// safe for concurrent use.
type Processor struct {
	bad    LicenseSet
	review LicenseSet
	repos  map[string]string
	logger *log.Logger

	deps  []Dependency
	vulns []Vulnerability
	stats Stats
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		bad:    NewLicenseSet(opts.Bad...),
		review: NewLicenseSet(opts.Review...),
		repos:  opts.Repositories,
		logger: logger,
	}
}

// SetRepositories replaces the repository name mapping.
func (p *Processor) SetRepositories(names map[string]string) {
	p.repos = names
}

// Reset clears accumulated rows and counters. Slices returned earlier stay
// valid.
func (p *Processor) Reset() {
	p.deps = nil
	p.vulns = nil
	p.stats = Stats{}
}

// Stats returns the running counters.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Dependencies returns the accumulated dependency rows.
func (p *Processor) Dependencies() []Dependency {
	return p.deps
}

// Vulnerabilities returns the accumulated vulnerability rows.
func (p *Processor) Vulnerabilities() []Vulnerability {
	return p.vulns
}

// Process normalizes one record and accumulates its rows. It returns false
// when the record was dropped; drops are counted, never returned as errors.
func (p *Processor) Process(rec map[string]any) (*Dependency, bool) {
	if rec == nil {
		p.stats.ValidationErrors++
		p.logger.Warn("skipping null dependency record")
		return nil, false
	}

	dep, vulns, err := p.build(rec)
	if err != nil {
		p.stats.TransformationErrors++
		p.logger.Error("error processing dependency", "name", recordName(rec), "err", err)
		return nil, false
	}

	if p.stats.TotalProcessed < sampleRows {
		p.logger.Info("sample dependency", "n", p.stats.TotalProcessed+1, "name", dep.Name,
			"version", dep.Version, "ecosystem", dep.Ecosystem, "transitivity", dep.Transitivity,
			"repository", dep.RepositoryID)
	}
	p.stats.TotalProcessed++
	p.deps = append(p.deps, dep)
	p.vulns = append(p.vulns, vulns...)
	return &dep, true
}

// ProcessAll consumes seq and returns the accumulated rows. An error yielded
// by seq ends the batch and is returned; rows processed so far are kept.
func (p *Processor) ProcessAll(seq iter.Seq2[map[string]any, error]) ([]Dependency, []Vulnerability, error) {
	p.logger.Info("starting data processing")
	for rec, err := range seq {
		if err != nil {
			return p.deps, p.vulns, err
		}
		p.Process(rec)
	}
	p.logger.Info("data processing completed",
		"processed", p.stats.TotalProcessed,
		"validation_errors", p.stats.ValidationErrors,
		"transformation_errors", p.stats.TransformationErrors,
		"vulnerabilities", len(p.vulns))
	return p.deps, p.vulns, nil
}

func (p *Processor) build(rec map[string]any) (Dependency, []Vulnerability, error) {
	var d Dependency
	var err error
	str := func(dst *string, paths []string, def string) {
		if err == nil {
			*dst, err = stringAt(rec, paths, def)
		}
	}
	var firstSeen, lastSeen string
	str(&d.ID, []string{"id", "repositoryId"}, "")
	str(&d.RepositoryID, []string{"repositoryId"}, Unknown)
	str(&d.Name, []string{"package.name", "name"}, Unknown)
	str(&d.Version, []string{"package.versionSpecifier", "package.version", "version"}, Unknown)
	str(&d.Ecosystem, []string{"ecosystem"}, Unknown)
	str(&d.Transitivity, []string{"transitivity"}, Unknown)
	str(&firstSeen, []string{"first_seen", "firstSeen"}, "")
	str(&lastSeen, []string{"last_seen", "lastSeen"}, "")
	if err != nil {
		return d, nil, err
	}

	licenses, err := stringsAt(rec, "licenses")
	if err != nil {
		return d, nil, err
	}
	projects, err := stringsAt(rec, "projects")
	if err != nil {
		return d, nil, err
	}
	rawVulns, err := objectsAt(rec, "vulnerabilities")
	if err != nil {
		return d, nil, err
	}
	d.RepositoryName, err = p.repositoryName(rec, d.RepositoryID)
	if err != nil {
		return d, nil, err
	}

	d.PackageManager = PackageManager(d.Ecosystem)
	d.Licenses = joinOr(licenses, Unknown)
	d.BadLicense = p.bad.Match(licenses)
	d.ReviewLicense = p.review.Match(licenses)
	d.PURL = PURL(d.Ecosystem, d.Name, d.Version)
	d.VulnerabilityCount = len(rawVulns)
	d.Severities = CountSeverities(rawVulns)
	d.FirstSeen = FormatTimestamp(firstSeen)
	d.LastSeen = FormatTimestamp(lastSeen)
	d.Projects = joinOr(projects, Unknown)

	vulns := make([]Vulnerability, 0, len(rawVulns))
	for _, v := range rawVulns {
		row, err := vulnerabilityRow(d.Name, d.Version, v)
		if err != nil {
			return d, nil, err
		}
		vulns = append(vulns, row)
	}
	return d, vulns, nil
}

// repositoryName resolves the display name: attached repository details,
// then the mapping, then "Repo-{id}".
func (p *Processor) repositoryName(rec map[string]any, id string) (string, error) {
	name, err := stringAt(rec, []string{"repository_details.name"}, "")
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	if id == "" || id == Unknown {
		return unknownRepository, nil
	}
	if name := p.repos[id]; name != "" {
		return name, nil
	}
	return "Repo-" + id, nil
}

func vulnerabilityRow(depName, depVersion string, v map[string]any) (Vulnerability, error) {
	id, err := stringAt(v, []string{"id"}, Unknown)
	if err != nil {
		return Vulnerability{}, err
	}
	severity, err := stringAt(v, []string{"severity"}, Unknown)
	if err != nil {
		return Vulnerability{}, err
	}
	desc, err := stringAt(v, []string{"description"}, noDescription)
	if err != nil {
		return Vulnerability{}, err
	}
	return Vulnerability{
		DependencyName:    depName,
		DependencyVersion: depVersion,
		ID:                id,
		Severity:          titleCase(severity),
		Description:       desc,
	}, nil
}

// recordName is a best-effort label for log lines about a bad record.
func recordName(rec map[string]any) string {
	for _, path := range []string{"package.name", "name"} {
		if s, ok := scalar(Field(rec, path, nil)); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("<%d fields>", len(rec))
}
