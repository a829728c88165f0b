package bindings

import "github.com/lithammer/fuzzysearch/fuzzy"

// Suggest finds the known operator name closest to name, for error
// messages like "unknown operator `@map`, did you mean `@Map`?" — the
// same findClosestMatch role runtime/planner/planner.go fills for
// decorator-name typos, reused here for operator-name typos against
// whatever a bindings.Map has registered. Only names that contain every
// character of name in order (case-folded) are candidates; among those
// the one with the smallest Levenshtein distance wins, so a transposed
// typo such as "qoute" finds no candidate.
func Suggest(name string, known []string) (string, bool) {
	if len(known) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindFold(name, known)
	if len(ranks) == 0 {
		return "", false
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target, true
}
