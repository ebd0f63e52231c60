package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/neetwise/listing/internal/datasource"
)

func seed(t *testing.T, s *Store, docs map[string]map[string]any, order []string) {
	t.Helper()
	for _, id := range order {
		if err := s.SetDocument(context.Background(), "colleges", id, docs[id]); err != nil {
			t.Fatalf("seeding %s: %v", id, err)
		}
	}
}

func ids(p *datasource.Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, r := range p.Items {
		out = append(out, r.DocID)
	}
	return out
}

func TestQueryPageOrderedWithCursor(t *testing.T) {
	s := New("")
	docs := map[string]map[string]any{
		"d1": {"name": "Delta", "type": "GOVT"},
		"d2": {"name": "Alpha", "type": "PRIVATE"},
		"d3": {"name": "Charlie", "type": "GOVT"},
		"d4": {"name": "Bravo", "type": "GOVT"},
		"d5": {"type": "GOVT"},
	}
	seed(t, s, docs, []string{"d1", "d2", "d3", "d4", "d5"})

	ctx := context.Background()
	first, err := s.QueryPage(ctx, "colleges", datasource.Query{OrderBy: "name", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"d2", "d4"}, ids(first)); diff != "" {
		t.Fatalf("unexpected first page (-want +got):\n%s", diff)
	}

	second, err := s.QueryPage(ctx, "colleges", datasource.Query{OrderBy: "name", Cursor: first.Last, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"d3", "d1"}, ids(second)); diff != "" {
		t.Fatalf("unexpected second page (-want +got):\n%s", diff)
	}

	third, err := s.QueryPage(ctx, "colleges", datasource.Query{OrderBy: "name", Cursor: second.Last, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third.Items) != 0 || third.Last != nil {
		t.Fatalf("expected an empty last page, got %v", ids(third))
	}
}

func TestQueryPageSkipsNullOrderValues(t *testing.T) {
	s := New("")
	docs := map[string]map[string]any{
		"n1": {"name": nil, "type": "GOVT"},
		"c":  {"name": "Charlie", "type": "GOVT"},
		"n2": {"name": nil, "type": "PRIVATE"},
		"a":  {"name": "Alpha", "type": "GOVT"},
		"b":  {"name": "Bravo", "type": "PRIVATE"},
	}
	seed(t, s, docs, []string{"n1", "c", "n2", "a", "b"})

	ctx := context.Background()
	first, err := s.QueryPage(ctx, "colleges", datasource.Query{OrderBy: "name", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.QueryPage(ctx, "colleges", datasource.Query{OrderBy: "name", Cursor: first.Last, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := append(ids(first), ids(second)...)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("unexpected ordered pages (-want +got):\n%s", diff)
	}
}

func TestQueryPageFiltered(t *testing.T) {
	s := New("")
	docs := map[string]map[string]any{
		"d1": {"name": "Delta", "type": "GOVT"},
		"d2": {"name": "Alpha", "type": "PRIVATE"},
		"d3": {"name": "Charlie", "type": "GOVT"},
	}
	seed(t, s, docs, []string{"d1", "d2", "d3"})

	page, err := s.QueryPage(context.Background(), "colleges", datasource.Query{FilterField: "type", FilterValue: "GOVT", Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"d1", "d3"}, ids(page)); diff != "" {
		t.Fatalf("unexpected filtered page (-want +got):\n%s", diff)
	}
	if page.Last != nil {
		t.Fatalf("expected no cursor for a filtered page")
	}
}

func TestQueryPageRejectsCompositeQueries(t *testing.T) {
	s := New("")
	_, err := s.QueryPage(context.Background(), "colleges", datasource.Query{FilterField: "type", FilterValue: "GOVT", OrderBy: "name", Limit: 5})
	if !errors.Is(err, datasource.ErrUnsupportedQuery) {
		t.Fatalf("expected ErrUnsupportedQuery, got %v", err)
	}
}

func TestDocuments(t *testing.T) {
	s := New("user-1")
	ctx := context.Background()

	if uid, ok := s.CurrentUserID(); !ok || uid != "user-1" {
		t.Fatalf("unexpected current user: %q %v", uid, ok)
	}

	missing, err := s.GetDocument(ctx, "userProfiles", "user-1")
	if err != nil || missing != nil {
		t.Fatalf("expected missing document, got %v %v", missing, err)
	}

	if err := s.SetDocument(ctx, "userProfiles", "user-1", map[string]any{"category": "OBC"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := s.GetDocument(ctx, "userProfiles", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Data["category"] != "OBC" {
		t.Fatalf("unexpected document: %v", rec.Data)
	}

	rec.Data["category"] = "SC"
	again, _ := s.GetDocument(ctx, "userProfiles", "user-1")
	if again.Data["category"] != "OBC" {
		t.Fatalf("store leaked its internal map")
	}

	if _, ok := New("").CurrentUserID(); ok {
		t.Fatalf("expected no signed in user")
	}
}

func TestSubscribeDeliversInsertsOnly(t *testing.T) {
	s := New("")
	ctx := context.Background()

	if err := s.SetDocument(ctx, "colleges", "before", map[string]any{"name": "Before"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	unsubscribe, err := s.Subscribe(ctx, "colleges", datasource.SubscribeOptions{OrderBy: "name"}, func(r datasource.Record) {
		got = append(got, r.DocID)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = s.SetDocument(ctx, "colleges", "new", map[string]any{"name": "New"})
	_ = s.SetDocument(ctx, "colleges", "new", map[string]any{"name": "New, renamed"})
	_ = s.SetDocument(ctx, "colleges", "before", map[string]any{"name": "Before, renamed"})

	unsubscribe()
	unsubscribe()

	_ = s.SetDocument(ctx, "colleges", "late", map[string]any{"name": "Late"})

	if diff := cmp.Diff([]string{"new"}, got); diff != "" {
		t.Fatalf("unexpected deliveries (-want +got):\n%s", diff)
	}
	if s.Subscribers("colleges") != 0 {
		t.Fatalf("expected subscription to be removed")
	}
}
