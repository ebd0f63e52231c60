// Package matching scores and filters candidates against a student's expected
// score range.
package matching

import (
	"math"

	"github.com/neetwise/listing/internal/catalog"
)

const perfectMatch = 100

// ResolveCutoff returns the candidate cutoff for the profile category, falling
// back to the general cutoff. The second value is false when neither is set.
func ResolveCutoff(profile *catalog.UserProfile, c catalog.Candidate) (catalog.Number, bool) {
	if !c.HasCutoff() {
		return catalog.Number{}, false
	}

	if cutoff := c.Cutoff[profile.CategoryKey()]; cutoff.Truthy() {
		return cutoff, true
	}
	if cutoff := c.Cutoff[catalog.CutoffGeneral]; cutoff.Truthy() {
		return cutoff, true
	}

	return catalog.Number{}, false
}

// MatchPercentage rates how centrally the candidate cutoff falls within the
// profile's expected score range, from 0 to 100. A cutoff at the centre
// scores 100 and the score decays linearly to 0 at the range edges.
// The second value is false whenever the inputs do not allow a score.
func MatchPercentage(profile *catalog.UserProfile, c catalog.Candidate) (int, bool) {
	if profile == nil || !c.HasCutoff() {
		return 0, false
	}
	if !profile.ExpectedScoreFrom.Truthy() || !profile.ExpectedScoreTo.Truthy() {
		return 0, false
	}

	raw, ok := ResolveCutoff(profile, c)
	if !ok {
		return 0, false
	}

	from, okFrom := profile.ExpectedScoreFrom.Int()
	to, okTo := profile.ExpectedScoreTo.Int()
	cutoff, okCutoff := raw.Int()
	if !okFrom || !okTo || !okCutoff {
		return 0, false
	}

	if from == to {
		return perfectMatch, true
	}

	center := float64(from+to) / 2
	halfRange := math.Abs(float64(to-from)) / 2
	pct := perfectMatch - math.Abs(float64(cutoff)-center)/halfRange*perfectMatch

	return int(math.Round(math.Max(0, pct))), true
}
