package httputil

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	// validIDPattern matches host content IDs (alphanumerics, hyphen, underscore).
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// numericIDPattern matches purely numeric IDs, optionally negative (VK owner ids).
	numericIDPattern = regexp.MustCompile(`^-?[0-9]+$`)

	// placeholderPattern matches unresolved template tokens such as {url} or ${src}.
	placeholderPattern = regexp.MustCompile(`\$?\{[^}]*\}|[{}]`)
)

var (
	// ErrInvalidURL is returned for source URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid source URL")

	// ErrRejected is returned for extracted candidates that are not usable media URLs.
	ErrRejected = errors.New("candidate rejected")
)

// directMediaExts are extensions that a player can open without resolution.
var directMediaExts = map[string]bool{
	".mp4": true, ".m3u8": true, ".webm": true, ".mkv": true,
	".mov": true, ".m4v": true, ".mpd": true,
}

// sensitiveParams are query keys whose values never leave this package unredacted.
var sensitiveParams = []string{"access_token", "token", "key", "sig", "signature"}

// ParseSource checks that a source URL is an absolute http(s) URL with a host.
func ParseSource(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: no host", ErrInvalidURL)
	}
	return u, nil
}

// ValidateCandidate accepts an extracted string only if it is an absolute
// http(s) URL free of template placeholders. It returns the trimmed URL.
func ValidateCandidate(candidate string) (string, error) {
	c := strings.TrimSpace(candidate)
	switch strings.ToLower(c) {
	case "", "undefined", "null", "none", "about:blank":
		return "", fmt.Errorf("%w: placeholder %q", ErrRejected, c)
	}
	if placeholderPattern.MatchString(c) {
		return "", fmt.Errorf("%w: unresolved template in %q", ErrRejected, truncate(c, 80))
	}
	u, err := url.Parse(c)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") {
		return "", fmt.Errorf("%w: not an absolute http(s) URL: %q", ErrRejected, truncate(c, 80))
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrRejected, truncate(c, 80))
	}
	return c, nil
}

// IsDirectMedia reports whether the URL path already ends in a playable media extension.
func IsDirectMedia(u *url.URL) bool {
	return directMediaExts[strings.ToLower(path.Ext(u.Path))]
}

// Absolute resolves root-relative and protocol-relative references against base.
// Anything else is returned unchanged so the validator can judge it.
func Absolute(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || !(strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "./")) {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

// RedactURL replaces the values of sensitive query parameters.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	changed := false
	for _, k := range sensitiveParams {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ValidateID checks that a host content ID contains only safe characters.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(id) > 256 {
		return fmt.Errorf("ID too long: %d characters", len(id))
	}
	if !validIDPattern.MatchString(id) {
		return fmt.Errorf("ID contains invalid characters: %q", id)
	}
	return nil
}

// ValidateNumericID checks that an ID is an integer.
func ValidateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return fmt.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
