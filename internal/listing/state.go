package listing

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
)

// SortOrder orders the view by the listing sort field.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscending
	SortDescending
)

func (o SortOrder) String() string {
	switch o {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

// ParseSortOrder accepts "none", "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q", s)
	}
}

// Notification announces a candidate that arrived in real time.
type Notification struct {
	Message   string
	Title     string
	Value     string
	ExpiresAt time.Time
}

// State is a snapshot of a listing session.
type State struct {
	// Items are the accumulated eligible candidates in arrival order.
	Items        []catalog.Candidate
	Cursor       *datasource.Cursor
	HasMore      bool
	TypeFilter   string
	SortOrder    SortOrder
	Loading      bool
	Profile      *catalog.UserProfile
	Notification *Notification
}

func (s State) clone() State {
	out := s
	out.Items = slices.Clone(s.Items)
	if s.Notification != nil {
		n := *s.Notification
		out.Notification = &n
	}
	return out
}

// Derive computes the list shown to the user: items of the selected type,
// stably sorted by the listing sort field when a sort order is set.
// Candidates without a numeric sort value keep their order after the others.
func Derive(items []catalog.Candidate, l catalog.Listing, typeFilter string, order SortOrder) []catalog.Candidate {
	view := make([]catalog.Candidate, 0, len(items))
	for _, c := range items {
		if typeFilter != "" && typeFilter != catalog.AllTypes && l.TypeOf(c) != typeFilter {
			continue
		}
		view = append(view, c)
	}

	if order == SortNone {
		return view
	}

	sort.SliceStable(view, func(i, j int) bool {
		a, aok := l.SortValue(view[i])
		b, bok := l.SortValue(view[j])
		switch {
		case !aok || !bok:
			return aok && !bok
		case order == SortDescending:
			return a > b
		default:
			return a < b
		}
	})

	return view
}
