package lookup

import (
	"strings"

	"github.com/jb-miles/castscout/internal/constants"
)

// IsChallengePage reports whether the page text looks like a bot-verification
// interstitial rather than real content. Callers pass best-effort title and
// body extractions; failures upstream become empty strings. The check is
// stateless and must run fresh after every navigation and reload.
func IsChallengePage(title, body string) bool {
	haystack := strings.ToLower(title + "\n" + body)
	for _, phrase := range constants.ChallengePhrases {
		if strings.Contains(haystack, phrase) {
			return true
		}
	}
	return false
}
