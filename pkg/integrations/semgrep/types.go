package semgrep

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one raw dependency as returned by the API.
type Record = map[string]any

// Page is one page of the dependency listing.
type Page struct {
	Dependencies []Record
	HasMore      bool
	Cursor       string
}

// PolicySetting is an upstream license policy tier.
type PolicySetting string

const (
	PolicyBlock   PolicySetting = "LICENSE_POLICY_SETTING_BLOCK"
	PolicyComment PolicySetting = "LICENSE_POLICY_SETTING_COMMENT"
)

// FilterKind selects which dependencyFilter is sent with a page request.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterRepository
	FilterPolicy
	FilterEcosystem
)

// Filter restricts a dependency listing. The zero value lists everything.
type Filter struct {
	Kind  FilterKind
	Value string
}

// NoFilter lists every dependency of the deployment.
func NoFilter() Filter {
	return Filter{}
}

// RepositoryFilter lists the dependencies of one repository.
func RepositoryFilter(id string) Filter {
	return Filter{Kind: FilterRepository, Value: id}
}

// PolicyFilter lists dependencies whose license falls under setting.
func PolicyFilter(setting PolicySetting) Filter {
	return Filter{Kind: FilterPolicy, Value: string(setting)}
}

// EcosystemFilter lists dependencies of one package ecosystem (e.g. "pypi").
func EcosystemFilter(ecosystem string) Filter {
	return Filter{Kind: FilterEcosystem, Value: ecosystem}
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterRepository:
		return "repository " + f.Value
	case FilterPolicy:
		return "policy " + f.Value
	case FilterEcosystem:
		return "ecosystem " + f.Value
	default:
		return "deployment"
	}
}

// dependencyFilter is the request body fragment for f, or nil.
func (f Filter) dependencyFilter() map[string]any {
	switch f.Kind {
	case FilterRepository:
		if id, err := strconv.ParseInt(f.Value, 10, 64); err == nil {
			return map[string]any{"repositoryId": []int64{id}}
		}
		return map[string]any{"repositoryId": []string{f.Value}}
	case FilterPolicy:
		return map[string]any{"licensePolicySetting": f.Value}
	case FilterEcosystem:
		return map[string]any{"ecosystem": []string{f.Value}}
	default:
		return nil
	}
}

// dependenciesResponse accepts both spellings of the continuation flag.
// hasMore wins when both are present.
type dependenciesResponse struct {
	Dependencies []Record `json:"dependencies"`
	HasMore      *bool    `json:"hasMore"`
	HasMoreSnake *bool    `json:"has_more"`
	Cursor       *string  `json:"cursor"`
}

func (r *dependenciesResponse) page() *Page {
	p := &Page{Dependencies: r.Dependencies}
	switch {
	case r.HasMore != nil:
		p.HasMore = *r.HasMore
	case r.HasMoreSnake != nil:
		p.HasMore = *r.HasMoreSnake
	}
	if r.Cursor != nil {
		p.Cursor = *r.Cursor
	}
	return p
}

// Repository is a project of the deployment.
type Repository struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// details is the enrichment object attached to per-repository records.
func (r Repository) details() map[string]any {
	return map[string]any{
		"name":   r.Name,
		"url":    r.URL,
		"branch": r.Branch,
	}
}

// RepositoryMapping maps repository ids to repositories.
type RepositoryMapping map[string]Repository

// Names returns the id to display-name view of m.
func (m RepositoryMapping) Names() map[string]string {
	names := make(map[string]string, len(m))
	for id, r := range m {
		names[id] = r.Name
	}
	return names
}

type projectsResponse struct {
	Projects []map[string]any `json:"projects"`
}

// repositoryFromProject reads the fields of one project entry. Entries
// without an id are skipped.
func repositoryFromProject(p map[string]any) (Repository, bool) {
	id := scalarString(p["id"])
	if id == "" {
		return Repository{}, false
	}
	r := Repository{
		ID:   id,
		Name: scalarString(p["name"]),
		URL:  scalarString(p["url"]),
	}
	if r.Name == "" {
		r.Name = "Unknown-" + id
	}
	for _, key := range []string{"default_branch", "defaultBranch", "branch"} {
		if b := scalarString(p[key]); b != "" {
			r.Branch = b
			break
		}
	}
	return r, true
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
