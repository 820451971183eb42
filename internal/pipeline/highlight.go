package pipeline

import "strings"

// SplitHighlight splits headline around the first occurrence of highlight.
// An empty highlight returns the whole headline as before. A highlight the
// headline does not contain is still returned as match, so it is painted
// after the headline.
func SplitHighlight(headline, highlight string) (before, match, after string) {
	if highlight == "" {
		return headline, "", ""
	}
	i := strings.Index(headline, highlight)
	if i < 0 {
		return headline, highlight, ""
	}
	return headline[:i], highlight, headline[i+len(highlight):]
}
