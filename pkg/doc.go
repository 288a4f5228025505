// Package pkg provides the libraries behind semgrep-deps-export.
//
// # Overview
//
// semgrep-deps-export pulls every dependency and vulnerability of a Semgrep
// Supply Chain deployment and writes them to XLSX reports. The pkg directory
// is organized by concern:
//
//  1. [integrations] - HTTP client and the Semgrep API client
//  2. [normalize] - record flattening, license categorization and statistics
//  3. [report] - XLSX workbook rendering
//  4. [pipeline] - orchestration of the fetch, normalize and render passes
//  5. [cache], [errors], [httputil], [observability], [buildinfo] - shared
//     infrastructure
//
// # Architecture
//
// The data flow of one export:
//
//	Semgrep Supply Chain API
//	         ↓
//	    [integrations/semgrep] (paged fetch with rate-limit backoff)
//	         ↓
//	    [normalize] (flatten records, categorize licenses, count)
//	         ↓
//	    [report] (styled XLSX workbook)
//
// [pipeline.Runner] drives the full report first, then the license subset
// and the policy and ecosystem filtered reports.
//
// # Quick Start
//
//	client, err := semgrep.NewClient(semgrep.Config{
//	    Token:        token,
//	    DeploymentID: "123",
//	})
//	if err != nil {
//	    return err
//	}
//	proc := normalize.NewProcessor(normalize.Options{Bad: []string{"GPL-3.0"}})
//	runner := pipeline.NewRunner(client, proc, nil, nil)
//	result, err := runner.Run(ctx, pipeline.Options{DeploymentID: "123"})
//
// [integrations]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/integrations
// [integrations/semgrep]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep
// [normalize]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/normalize
// [report]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/semgrep-deps-export/pkg/buildinfo
package pkg
