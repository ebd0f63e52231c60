package matching

import (
	"github.com/neetwise/listing/internal/catalog"
)

// IsEligible reports whether the candidate should stay in a listing for the
// profile. Anything that cannot be decided keeps the candidate.
func IsEligible(profile *catalog.UserProfile, c catalog.Candidate) bool {
	if !c.HasCutoff() {
		return true
	}

	raw, ok := ResolveCutoff(profile, c)
	if !ok {
		return true
	}

	from, okFrom := profile.ExpectedScoreFrom.Int()
	to, okTo := profile.ExpectedScoreTo.Int()
	cutoff, okCutoff := raw.Int()
	if !okFrom || !okTo || !okCutoff {
		return true
	}

	return from <= cutoff && cutoff <= to
}

// FilterByEligibility drops candidates whose cutoff falls outside the profile
// score range. Without a profile, or with a profile that sets no criteria,
// the input is returned as is. Survivors keep their relative order.
func FilterByEligibility(candidates []catalog.Candidate, profile *catalog.UserProfile) []catalog.Candidate {
	if profile == nil || len(candidates) == 0 {
		return candidates
	}
	if !profile.HasCriteria() {
		return candidates
	}

	kept := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if IsEligible(profile, c) {
			kept = append(kept, c)
		}
	}

	return kept
}
