package youtube

import "regexp"

// videoIDPatterns covers the URL shapes users paste. Each captures the
// candidate ID; the length check happens after the match because query
// strings and trailing paths vary.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?(?:[^&]*&)*v=([^&]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([^?/]+)`),
	regexp.MustCompile(`(?:https?://)?youtu\.be/([^?/]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([^?/]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([^?/]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/live/([^?/]+)`),
}

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the 11-character video ID from a bare ID or any
// of the supported YouTube URL shapes (watch, embed, youtu.be, /v/,
// /shorts/, /live/). It returns "" when the input matches none of them.
func ParseVideoID(input string) string {
	if input == "" {
		return ""
	}

	if bareVideoID.MatchString(input) {
		return input
	}

	for _, pattern := range videoIDPatterns {
		m := pattern.FindStringSubmatch(input)
		if m != nil && bareVideoID.MatchString(m[1]) {
			return m[1]
		}
	}

	return ""
}
