// Helpers for turning user input (URLs, handles) into YouTube identifiers.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	playlistURLPattern = regexp.MustCompile(`^https://www\.youtube\.com/playlist\?list=([\w\-]+)$`)
	bareVideoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	videoURLPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	}
)

// ParsePlaylistURL returns the list id of a https://www.youtube.com/playlist?list=<id> URL.
//
// Anything else, including watch URLs that carry a list parameter, is an [ErrValidation].
func ParsePlaylistURL(raw string) (string, error) {
	m := playlistURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: invalid playlist url %q", ErrValidation, raw)
	}
	return m[1], nil
}

// ExtractVideoID accepts a bare 11 character video id or a youtu.be, watch, embed or /v/ URL.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if bareVideoIDPattern.MatchString(raw) {
		return raw, nil
	}

	for _, p := range videoURLPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("%w: could not extract video id from %q", ErrValidation, raw)
}

// VideoURL returns the watch page URL for a video id.
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// NormalizeHandle strips surrounding whitespace and a leading "@" from a channel handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
