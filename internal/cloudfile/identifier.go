package cloudfile

import (
	"net/url"
	"regexp"
	"strings"
)

// Identifier shapes accepted for "open by reference", tried in order:
// a bare ID, a /d/<id>/ path segment, an id query parameter, and finally
// any ID-shaped substring. The last pattern is a deliberately loose
// fallback carried over from the original link formats users paste in.
var (
	reExactID = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
	rePathID  = regexp.MustCompile(`/d/([A-Za-z0-9_-]{10,})`)
	reQueryID = regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]{10,})`)
	reAnyID   = regexp.MustCompile(`[A-Za-z0-9_-]{10,}`)
)

// ParseFileID extracts a canonical file ID from free-form input: a bare
// identifier, a full view URL, or a URL carrying an id query parameter.
// Returns "" when nothing ID-shaped is present. Input is URL-decoded
// first, falling back to the raw string if decoding fails.
func ParseFileID(raw string) string {
	input := strings.TrimSpace(raw)
	if input == "" {
		return ""
	}
	if decoded, err := url.QueryUnescape(input); err == nil {
		input = strings.TrimSpace(decoded)
	}
	if input == "" {
		return ""
	}

	if reExactID.MatchString(input) {
		return input
	}
	if m := rePathID.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if m := reQueryID.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return reAnyID.FindString(input)
}
