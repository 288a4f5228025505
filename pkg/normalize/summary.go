package normalize

// Summary describes one processing pass.
type Summary struct {
	Dependencies    DependencySummary
	Vulnerabilities VulnerabilitySummary
	Processing      Stats
}

// DependencySummary counts dependency rows by vulnerability and license
// classification.
type DependencySummary struct {
	Total                  int
	WithVulnerabilities    int
	WithoutVulnerabilities int
	WithBadLicenses        int
	WithoutBadLicenses     int
	WithReviewLicenses     int
	WithoutReviewLicenses  int
}

// VulnerabilitySummary counts vulnerability rows by severity bucket.
type VulnerabilitySummary struct {
	Total int
	SeverityCounts
}

// Summary summarizes the accumulated rows.
func (p *Processor) Summary() Summary {
	return Summarize(p.deps, p.vulns, p.stats)
}

// Summarize derives a Summary from rows. It does not modify its inputs.
func Summarize(deps []Dependency, vulns []Vulnerability, stats Stats) Summary {
	s := Summary{Processing: stats}
	s.Dependencies.Total = len(deps)
	for _, d := range deps {
		if d.HasVulnerabilities() {
			s.Dependencies.WithVulnerabilities++
		}
		if d.BadLicense {
			s.Dependencies.WithBadLicenses++
		}
		if d.ReviewLicense {
			s.Dependencies.WithReviewLicenses++
		}
	}
	s.Dependencies.WithoutVulnerabilities = len(deps) - s.Dependencies.WithVulnerabilities
	s.Dependencies.WithoutBadLicenses = len(deps) - s.Dependencies.WithBadLicenses
	s.Dependencies.WithoutReviewLicenses = len(deps) - s.Dependencies.WithReviewLicenses

	s.Vulnerabilities.Total = len(vulns)
	for _, v := range vulns {
		s.Vulnerabilities.add(v.Severity)
	}
	return s
}

// LicenseSubset returns the dependencies flagged bad or review, together
// with their vulnerability rows.
func LicenseSubset(deps []Dependency, vulns []Vulnerability) ([]Dependency, []Vulnerability) {
	type key struct{ name, version string }
	keep := make(map[key]bool)
	var subset []Dependency
	for _, d := range deps {
		if d.BadLicense || d.ReviewLicense {
			subset = append(subset, d)
			keep[key{d.Name, d.Version}] = true
		}
	}
	var subVulns []Vulnerability
	for _, v := range vulns {
		if keep[key{v.DependencyName, v.DependencyVersion}] {
			subVulns = append(subVulns, v)
		}
	}
	return subset, subVulns
}
