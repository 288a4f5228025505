package normalize

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// purlTypes maps Semgrep ecosystems to package-url types.
var purlTypes = map[string]string{
	"npm":       packageurl.TypeNPM,
	"pypi":      packageurl.TypePyPi,
	"maven":     packageurl.TypeMaven,
	"gradle":    packageurl.TypeMaven,
	"cargo":     packageurl.TypeCargo,
	"go":        packageurl.TypeGolang,
	"gomod":     packageurl.TypeGolang,
	"nuget":     packageurl.TypeNuget,
	"composer":  packageurl.TypeComposer,
	"gem":       packageurl.TypeGem,
	"cocoapods": packageurl.TypeCocoapods,
	"swift":     packageurl.TypeSwift,
	"pub":       packageurl.TypePub,
}

// PURL builds a package URL such as "pkg:npm/lodash@4.17.21". It returns ""
// for ecosystems without a purl type or a missing name. Version ranges are
// left out because a purl names one concrete version.
func PURL(ecosystem, name, version string) string {
	typ, ok := purlTypes[strings.ToLower(ecosystem)]
	if !ok || name == "" || name == Unknown {
		return ""
	}

	namespace, base := splitNamespace(typ, name)
	if !isExactVersion(version) {
		version = ""
	}
	return packageurl.NewPackageURL(typ, namespace, base, version, nil, "").ToString()
}

// splitNamespace separates the namespace part of a package name according
// to the conventions of each ecosystem.
func splitNamespace(typ, name string) (string, string) {
	switch typ {
	case packageurl.TypeMaven:
		if group, artifact, ok := strings.Cut(name, ":"); ok {
			return group, artifact
		}
	case packageurl.TypeNPM:
		if strings.HasPrefix(name, "@") {
			if scope, pkg, ok := strings.Cut(name, "/"); ok {
				return scope, pkg
			}
		}
	case packageurl.TypeGolang, packageurl.TypeComposer, packageurl.TypeSwift:
		if i := strings.LastIndex(name, "/"); i > 0 {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

func isExactVersion(v string) bool {
	if v == "" || v == Unknown {
		return false
	}
	return !strings.ContainsAny(v, "<>=^~*|, ")
}
