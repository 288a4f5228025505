// Package semgrep is a client for the Semgrep Supply Chain API.
//
// It lists the dependencies of a deployment page by page and exposes them
// as a lazy, single-pass [iter.Seq2] of raw records. Pagination and
// rate-limit backoff are hidden from the caller:
//
//	client, err := semgrep.NewClient(semgrep.Config{
//	    Token:        token,
//	    DeploymentID: "12345",
//	})
//	for rec, err := range client.Dependencies(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    // use rec
//	}
//
// # Fetch Strategies
//
//   - [Client.Dependencies]: every dependency in the deployment
//   - [Client.DependenciesByPolicy]: dependencies under a license policy setting
//   - [Client.DependenciesByEcosystem]: dependencies of one package ecosystem
//   - [Client.DependenciesByRepository]: one pagination per repository, with
//     each record tagged with its repository under "repository_details"
//
// # Records
//
// Records are decoded as [Record] values rather than fixed structs because
// field presence varies between API revisions. Numbers are kept as
// [encoding/json.Number].
//
// # Repository Listing
//
// Repository names come from the project listing endpoint, which is keyed
// by the deployment slug rather than its id. The listing is cached through
// [cache.Cache] when a cache is configured.
//
// [cache.Cache]: github.com/matzehuels/semgrep-deps-export/pkg/cache.Cache
package semgrep
