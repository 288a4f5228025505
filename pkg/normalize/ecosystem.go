package normalize

import "strings"

var packageManagers = map[string]string{
	"npm":       "npm",
	"pypi":      "pip",
	"maven":     "maven",
	"gradle":    "gradle",
	"cargo":     "cargo",
	"go":        "go",
	"nuget":     "nuget",
	"composer":  "composer",
	"gem":       "gem",
	"cocoapods": "cocoapods",
	"swift":     "swift",
	"pub":       "pub",
}

// PackageManager returns the package manager for an ecosystem, or the
// ecosystem itself when it is not known.
func PackageManager(ecosystem string) string {
	if pm, ok := packageManagers[strings.ToLower(ecosystem)]; ok {
		return pm
	}
	return ecosystem
}
