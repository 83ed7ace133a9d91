package sidecar

import "strings"

// ScoreAbsent is the sentinel quality for "no sidecar found".
const ScoreAbsent = -1

// Score computes the additive quality measure of a sidecar document. It is
// monotonically non-decreasing in information content and is used only to
// pick the best single sidecar to retain per content hash; documents are
// never merged.
func Score(doc *Document) int {
	if doc == nil {
		return ScoreAbsent
	}
	score := 0
	if _, ok := doc.PrimaryTime(); ok {
		score += 100
	} else if _, ok := doc.SecondaryTime(); ok {
		// Secondary only counts when no primary exists; its contribution is
		// capped below the primary's so a weak-trust timestamp can never
		// outrank a real capture time.
		score += 60
	}
	if doc.HasGeo() {
		score += 30
	}
	if strings.TrimSpace(doc.Description) != "" {
		score += 10
	}
	if doc.Favorited {
		score += 5
	}
	if len(doc.People) > 0 {
		score += 5
	}
	return score
}
