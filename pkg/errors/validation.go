package errors

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the wire format for daily lineup dates.
const DateLayout = "2006-01-02"

// ValidateAssetURL checks that raw is an absolute http(s) URL safe to fetch.
//
// The rules are intentionally conservative:
//   - No empty URLs
//   - No control characters
//   - Scheme must be http or https
//   - Host must be present
//   - Maximum length of 2048 characters
func ValidateAssetURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidURL, "asset url cannot be empty")
	}
	if len(raw) > 2048 {
		return New(ErrCodeInvalidURL, "asset url too long (max 2048 characters)")
	}
	for _, r := range raw {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidURL, "asset url contains control characters")
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "parse asset url")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return New(ErrCodeInvalidURL, "unsupported asset url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "asset url has no host")
	}
	return nil
}

// ValidateDate checks that s is a calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "date cannot be empty")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid date %q (want YYYY-MM-DD)", s)
	}
	return nil
}
