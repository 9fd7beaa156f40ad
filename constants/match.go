package constants

// MatchType is the canonical classification for a bill medicine after
// comparison against the prescription.
type MatchType string

// Stable values (returned verbatim in API responses and reports).
const (
	MatchExact              MatchType = "exact"               // similarity >= 0.95
	MatchHighConfidence     MatchType = "high_confidence"     // similarity >= 0.80
	MatchModerateConfidence MatchType = "moderate_confidence" // 0.60 <= similarity < 0.80, review recommended
	MatchOTC                MatchType = "otc"                 // over-the-counter, policy-dependent
	MatchExcluded           MatchType = "excluded"            // cosmetic/lifestyle, never reimbursed
	MatchNoMatch            MatchType = "no_match"            // not found in prescription
)

// Admissible reports whether a match type qualifies for reimbursement on its
// own. OTC admissibility is additionally gated by the policy at comparison
// time, so MatchOTC here reflects the post-gate classification.
func (m MatchType) Admissible() bool {
	switch m {
	case MatchExact, MatchHighConfidence, MatchModerateConfidence, MatchOTC:
		return true
	default:
		return false
	}
}

// NeedsReview reports whether the match should be flagged for manual review.
func (m MatchType) NeedsReview() bool {
	return m == MatchModerateConfidence
}
