package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxProductNameLength bounds product names coming from URLs and forms.
const maxProductNameLength = 256

// ValidateProductName validates a product name received from a request.
// Product names are free text in the sheet, so only emptiness, length and
// control characters are rejected.
func ValidateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "product name cannot be empty")
	}

	if len(name) > maxProductNameLength {
		return New(ErrCodeInvalidInput, "product name too long (max %d characters)", maxProductNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "product name contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a spreadsheet URL.
// It ensures the URL parses, has a host and uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}

// SafeFilename reduces a product name to a file name stem.
// Letters, digits, spaces, dashes and underscores are kept; everything else
// is dropped and the result is trimmed. An empty result becomes "label".
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return "label"
	}
	return s
}
