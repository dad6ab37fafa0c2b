// Package redact removes sensitive information from strings before they are
// logged or returned in error responses. It guards against accidental leakage
// of credentials, connection strings and tokens that can ride along inside
// wrapped error messages.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^@\s]+@`)

	// password=..., password: ... fragments.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?|['"]?[=:])[^'"&\s]{3,}`)

	// Standard three-part base64url JWT tokens.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Email addresses.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	placeholders = map[*regexp.Regexp]string{
		dbConnRegex:   RedactedCredentialPlaceholder,
		passwordRegex: RedactedCredentialPlaceholder,
		jwtTokenRegex: RedactedJWTPlaceholder,
		emailRegex:    RedactedEmailPlaceholder,
	}

	// Deterministic application order.
	patterns = []*regexp.Regexp{dbConnRegex, passwordRegex, jwtTokenRegex, emailRegex}
)

// String redacts sensitive patterns in the given string.
func String(s string) string {
	for _, re := range patterns {
		s = re.ReplaceAllString(s, placeholders[re])
	}
	return s
}

// Error redacts sensitive patterns in an error's message.
// Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
