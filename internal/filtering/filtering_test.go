package filtering

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/neetwise/listing/internal/catalog"
)

func college(id string, general any) catalog.Candidate {
	return catalog.Candidate{
		DocID:  id,
		Name:   id,
		Cutoff: map[string]catalog.Number{catalog.CutoffGeneral: catalog.NumberOf(general)},
	}
}

func keys(items []catalog.Candidate) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Key())
	}
	return out
}

type failingFilter struct{}

func (failingFilter) Name() string    { return "failing" }
func (failingFilter) Disable(string)  {}
func (failingFilter) IsEnabled() bool { return true }
func (failingFilter) Validate() error { return nil }
func (failingFilter) Apply(context.Context, Deps, []catalog.Candidate) ([]catalog.Candidate, Step, error) {
	return nil, Step{}, errors.New("boom")
}

func TestRunEligibility(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	profile := &catalog.UserProfile{
		ExpectedScoreFrom: catalog.NumberOf("500"),
		ExpectedScoreTo:   catalog.NumberOf("600"),
		Category:          "General",
	}
	items := []catalog.Candidate{college("a", 450), college("b", 550), {DocID: "c"}, college("d", 650)}

	got, err := Run(context.Background(), Deps{Logger: zap.New(core), Profile: profile}, []Filter{NewEligibility()}, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys(got))
	}
	for i := range want {
		if got[i].Key() != want[i] {
			t.Fatalf("expected %v, got %v", want, keys(got))
		}
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step entry, got %d", len(steps))
	}
	fields := steps[0].ContextMap()
	if fields["initial"] != int64(4) || fields["dropped"] != int64(2) || fields["left"] != int64(2) {
		t.Fatalf("unexpected step fields: %v", fields)
	}

	if len(items) != 4 {
		t.Fatalf("input was modified: %v", keys(items))
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	t.Parallel()

	profile := &catalog.UserProfile{ExpectedScoreFrom: catalog.NumberOf(500), ExpectedScoreTo: catalog.NumberOf(600)}
	items := []catalog.Candidate{college("a", 450)}

	steps := []Filter{NewEligibility()}
	DisableByName(steps, EligibilityName, "skip requested via flag")

	got, err := Run(context.Background(), Deps{Profile: profile}, steps, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected disabled filter to keep everything, got %v", keys(got))
	}

	statuses := Describe(steps)
	if len(statuses) != 1 || statuses[0].Enabled || statuses[0].Reason != "skip requested via flag" {
		t.Fatalf("unexpected status: %+v", statuses)
	}
}

func TestRunWrapsStepErrors(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Deps{}, []Filter{failingFilter{}}, nil)
	if err == nil || err.Error() != "failing: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEligibilityStatus(t *testing.T) {
	t.Parallel()

	f := NewEligibility()
	profile := &catalog.UserProfile{ExpectedScoreFrom: catalog.NumberOf(500), ExpectedScoreTo: catalog.NumberOf("600"), Category: "OBC"}
	if _, _, err := f.Apply(context.Background(), Deps{Profile: profile}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := Describe([]Filter{f})[0]
	if !status.Enabled {
		t.Fatalf("expected filter to be enabled")
	}
	if status.Details["expected_score"] != "500-600" || status.Details["category"] != "obc" {
		t.Fatalf("unexpected details: %v", status.Details)
	}
}
