package photo

import (
	"regexp"
	"strings"

	"github.com/jb-miles/castscout/internal/constants"
	"github.com/jb-miles/castscout/internal/domain"
)

// bannedSrc rejects obvious non-headshot assets by source URL.
var bannedSrc = regexp.MustCompile(`(?i)(logo|banner|sprite|captcha|(?:^|[/._-])ads?(?:[/._-]|$))`)

// Pick scores every image on a profile page and returns the best headshot
// candidate, or ok=false if every image was rejected.
//
// Score is width*height with a small bonus for non-trivial alt text (images
// the site bothered to label are more likely to be the actual headshot).
// Images below the minimum dimension floor or with a banned source URL are
// never selected regardless of score.
func Pick(images []domain.PhotoCandidate) (domain.PhotoCandidate, bool) {
	minDim := constants.PhotoConfig.MinDimension

	var best domain.PhotoCandidate
	bestScore := 0.0
	found := false

	for _, img := range images {
		if img.Src == "" {
			continue
		}
		if img.Width < minDim || img.Height < minDim {
			continue
		}
		if bannedSrc.MatchString(img.Src) {
			continue
		}
		score := float64(img.Width) * float64(img.Height)
		if len(strings.TrimSpace(img.Alt)) > 2 {
			score *= constants.PhotoConfig.AltBonus
		}
		if !found || score > bestScore {
			best = img
			bestScore = score
			found = true
		}
	}

	return best, found
}
