package normalize

// Unknown is the placeholder for absent values.
const Unknown = "Unknown"

const (
	unknownRepository = "Unknown Repository"
	noDescription     = "No description available"
)

// Dependency is one normalized dependency row.
type Dependency struct {
	ID             string
	RepositoryID   string
	RepositoryName string
	Name           string
	Version        string
	Ecosystem      string
	PackageManager string
	Transitivity   string
	Licenses       string
	BadLicense     bool
	ReviewLicense  bool
	PURL           string

	VulnerabilityCount int
	Severities         SeverityCounts

	FirstSeen string
	LastSeen  string
	Projects  string
}

// HasVulnerabilities reports whether the dependency has any vulnerability.
func (d Dependency) HasVulnerabilities() bool {
	return d.VulnerabilityCount > 0
}

// Vulnerability is one normalized vulnerability row.
type Vulnerability struct {
	DependencyName    string
	DependencyVersion string
	ID                string
	Severity          string
	Description       string
}

// Stats are running counters of a processing pass.
type Stats struct {
	TotalProcessed       int
	ValidationErrors     int
	TransformationErrors int
}
