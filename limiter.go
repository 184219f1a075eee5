package imago

// sanitizeK clamps a requested top-K count into [1, maxResults], treating a
// non-positive or over-large k as "as many as available" (§4.H step 4,
// §4.I "maintain a ... heap ... of bounded size R" — both bound their heap
// by this same clamp rather than letting a caller request more results
// than there are documents/candidates to rank). Adapted from the teacher's
// limiter.go sanitizeK, trimmed to the one helper both the query engine and
// linear search need; the teacher's autocutResults/Autocut score-distribution
// cutoff has no counterpart in this spec's top-K contract and is dropped
// (see DESIGN.md).
func sanitizeK(k, maxResults int) int {
	if k <= 0 || k > maxResults {
		return maxResults
	}
	return k
}
