// Package integrations provides the shared HTTP client for upstream SaaS APIs.
//
// # Overview
//
// The [Client] type sends JSON requests with default headers (bearer token,
// user agent), classifies non-2xx responses into the structured error codes
// of [errors], and decodes JSON bodies with numbers preserved as
// [encoding/json.Number] so that opaque identifiers survive intact.
//
// API-specific clients live in subpackages:
//
//   - [semgrep]: Semgrep Supply Chain dependency and project listing
//
// # Error Classification
//
// Every failure is an [*errors.Error]:
//
//   - 401, 403, 404, 5xx and other non-2xx statuses carry the status code
//   - 429 is additionally wrapped in [httputil.RetryableError]
//   - transport failures become NETWORK_ERROR with no status
//   - bodies that are not JSON become MALFORMED_RESPONSE
//
// Request and response events are reported through
// [observability.HTTP] hooks.
//
// [semgrep]: github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep
// [errors]: github.com/matzehuels/semgrep-deps-export/pkg/errors
// [*errors.Error]: github.com/matzehuels/semgrep-deps-export/pkg/errors.Error
// [httputil.RetryableError]: github.com/matzehuels/semgrep-deps-export/pkg/httputil.RetryableError
// [observability.HTTP]: github.com/matzehuels/semgrep-deps-export/pkg/observability.HTTP
package integrations
