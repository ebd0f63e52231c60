package filtering

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/matching"
)

// EligibilityName is the name of the profile eligibility step.
const EligibilityName = "eligibility"

type eligibilityFilter struct {
	mu       sync.Mutex
	disabled bool
	reason   string
	last     *catalog.UserProfile
}

// NewEligibility creates a filter that removes candidates whose cutoff falls
// outside the expected score range of the profile.
func NewEligibility() Filter {
	return &eligibilityFilter{}
}

func (f *eligibilityFilter) Name() string { return EligibilityName }

func (f *eligibilityFilter) Disable(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = true
	f.reason = reason
}

func (f *eligibilityFilter) IsEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disabled
}

func (f *eligibilityFilter) Validate() error { return nil }

func (f *eligibilityFilter) Apply(_ context.Context, deps Deps, items []catalog.Candidate) ([]catalog.Candidate, Step, error) {
	f.mu.Lock()
	f.last = deps.Profile
	f.mu.Unlock()

	initial := len(items)
	kept := matching.FilterByEligibility(items, deps.Profile)

	if deps.Logger != nil && len(kept) < initial {
		dropped := make([]string, 0, initial-len(kept))
		survivors := make(map[string]struct{}, len(kept))
		for _, c := range kept {
			survivors[c.Key()] = struct{}{}
		}
		for _, c := range items {
			if _, ok := survivors[c.Key()]; !ok {
				dropped = append(dropped, c.Key())
			}
		}
		deps.Logger.Debug("excluding candidates outside the expected score range",
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *eligibilityFilter) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	details := map[string]string{}
	if p := f.last; p != nil {
		if p.ExpectedScoreFrom.IsSet() || p.ExpectedScoreTo.IsSet() {
			details["expected_score"] = p.ExpectedScoreFrom.String() + "-" + p.ExpectedScoreTo.String()
		}
		details["category"] = p.CategoryKey()
	}
	return Status{Name: EligibilityName, Enabled: !f.disabled, Reason: f.reason, Details: details}
}
