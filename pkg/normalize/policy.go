package normalize

import (
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
)

// Policy is a license policy file:
//
//	bad    = ["GPL-3.0", "AGPL-3.0"]
//	review = ["LGPL-2.1", "MPL-2.0"]
type Policy struct {
	Bad    []string `toml:"bad"`
	Review []string `toml:"review"`
}

// LoadPolicy reads a TOML license policy. Unknown keys are rejected so that
// a misspelled list is not silently ignored.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "read license policy %s", path)
	}
	var p Policy
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "parse license policy %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "license policy %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return &p, nil
}

// Merge returns the union of p with extra bad and review lists. Duplicates
// (case-insensitive) keep their first spelling.
func (p *Policy) Merge(bad, review []string) Policy {
	var out Policy
	if p != nil {
		out = Policy{Bad: slices.Clone(p.Bad), Review: slices.Clone(p.Review)}
	}
	out.Bad = dedupe(append(out.Bad, bad...))
	out.Review = dedupe(append(out.Review, review...))
	return out
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, l := range list {
		k := normalizeLicense(l)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(l))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
