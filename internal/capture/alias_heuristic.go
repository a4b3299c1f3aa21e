package capture

import "cons/internal/model"

// aliasSimilarityThreshold is the normalized-Levenshtein ratio at or
// above which an LLM-suggested tag is treated as an alternate label for an
// existing canonical tag. The ratio is normalized over
// max(len(a), len(b)).
const aliasSimilarityThreshold = 0.82

// findAliasCandidate looks for an existing canonical tag whose name
// differs from suggestion but is similar enough to treat suggestion as
// an alternate label for it. Candidates are scanned in name order so
// the result is deterministic; the first one clearing the threshold
// wins. Returns ok=false if nothing qualifies.
func findAliasCandidate(suggestion string, existing []model.Tag) (model.Tag, bool) {
	for _, t := range existing {
		if t.Name == suggestion {
			continue
		}
		if similarityRatio(suggestion, t.Name) >= aliasSimilarityThreshold {
			return t, true
		}
	}
	return model.Tag{}, false
}
