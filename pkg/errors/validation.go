package errors

import (
	"strings"
	"unicode"
)

// ValidateDeploymentID validates a deployment identifier before it is put
// into a request path.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDeploymentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "deployment id is required")
	}
	return validatePathSegment("deployment id", id)
}

// ValidateDeploymentSlug validates an optional deployment slug.
// An empty slug is valid; repository names then fall back to "Repo-{id}".
func ValidateDeploymentSlug(slug string) error {
	if slug == "" {
		return nil
	}
	return validatePathSegment("deployment slug", slug)
}

func validatePathSegment(what, s string) error {
	if len(s) > 128 {
		return New(ErrCodeInvalidConfig, "%s too long (max 128 characters)", what)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "%s contains invalid control characters", what)
		}
	}
	for _, pattern := range []string{"/", "\\", "..", "?", "#"} {
		if strings.Contains(s, pattern) {
			return New(ErrCodeInvalidConfig, "%s contains invalid characters: %q", what, pattern)
		}
	}
	return nil
}

// ValidateToken validates that an API token is present and printable.
func ValidateToken(token string) error {
	if token == "" {
		return New(ErrCodeInvalidConfig, "SEMGREP_APP_TOKEN is required")
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "token contains whitespace or control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// MaskToken hides all but the first and last four characters of a token.
// Tokens of eight characters or fewer are masked completely.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
