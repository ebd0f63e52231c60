package paginator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
	"github.com/neetwise/listing/internal/datasource/memory"
)

type failingSource struct {
	datasource.Source
}

func (failingSource) QueryPage(context.Context, string, datasource.Query) (*datasource.Page, error) {
	return nil, errors.New("unavailable")
}

func seedColleges(t *testing.T, n int, typ func(i int) string) *memory.Store {
	t.Helper()

	store := memory.New("")
	for i := 0; i < n; i++ {
		doc := map[string]any{"name": fmt.Sprintf("College %02d", i), "type": typ(i)}
		if err := store.SetDocument(context.Background(), "colleges", fmt.Sprintf("c%02d", i), doc); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	return store
}

func names(items []catalog.Candidate) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Name)
	}
	return out
}

func TestFetchPageHasMore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		documents int
		wantItems int
		wantMore  bool
	}{
		{name: "full page", documents: 15, wantItems: 15, wantMore: true},
		{name: "short page", documents: 10, wantItems: 10, wantMore: false},
		{name: "more documents than a page", documents: 40, wantItems: 15, wantMore: true},
		{name: "empty collection", documents: 0, wantItems: 0, wantMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := seedColleges(t, tt.documents, func(int) string { return "GOVT" })
			p, err := New(store, catalog.Colleges)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			page := p.FetchPage(context.Background(), 15, nil, catalog.AllTypes)
			if page.Failed {
				t.Fatalf("unexpected failed page")
			}
			if len(page.Items) != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, len(page.Items))
			}
			if got := HasMore(page, 15, catalog.AllTypes); got != tt.wantMore {
				t.Fatalf("expected hasMore=%v, got %v", tt.wantMore, got)
			}
			if (page.NextCursor != nil) != tt.wantMore {
				t.Fatalf("expected cursor presence %v, got %+v", tt.wantMore, page.NextCursor)
			}
		})
	}
}

func TestFetchPageResumesAfterCursor(t *testing.T) {
	t.Parallel()

	store := seedColleges(t, 5, func(int) string { return "GOVT" })
	p, err := New(store, catalog.Colleges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	first := p.FetchPage(ctx, 3, nil, catalog.AllTypes)
	second := p.FetchPage(ctx, 3, first.NextCursor, catalog.AllTypes)

	if diff := cmp.Diff([]string{"College 00", "College 01", "College 02"}, names(first.Items)); diff != "" {
		t.Fatalf("unexpected first page (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"College 03", "College 04"}, names(second.Items)); diff != "" {
		t.Fatalf("unexpected second page (-want +got):\n%s", diff)
	}
	if second.NextCursor != nil {
		t.Fatalf("expected end of data after a short page")
	}
}

func TestFetchPageFilteredIsSingleSortedPage(t *testing.T) {
	t.Parallel()

	store := memory.New("")
	ctx := context.Background()
	// Insert in reverse name order so the client-side sort is observable.
	for i := 59; i >= 0; i-- {
		doc := map[string]any{"name": fmt.Sprintf("college %02d", i), "type": "GOVT"}
		if i%2 == 0 {
			doc["name"] = fmt.Sprintf("College %02d", i)
		}
		if err := store.SetDocument(ctx, "colleges", fmt.Sprintf("g%02d", i), doc); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	if err := store.SetDocument(ctx, "colleges", "p1", map[string]any{"name": "Private", "type": "PRIVATE"}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	p, err := New(store, catalog.Colleges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page := p.FetchPage(ctx, 15, nil, "GOVT")
	if len(page.Items) != DefaultFilteredPageSize {
		t.Fatalf("expected %d items, got %d", DefaultFilteredPageSize, len(page.Items))
	}
	if page.NextCursor != nil {
		t.Fatalf("expected no cursor in filtered mode")
	}
	if HasMore(page, 15, "GOVT") {
		t.Fatalf("expected no more pages in filtered mode")
	}

	// The store returns g59..g10 in insertion order; sorted that is 10..59.
	got := names(page.Items)
	if got[0] != "College 10" || got[1] != "college 11" || got[len(got)-1] != "college 59" {
		t.Fatalf("unexpected order: %v", got)
	}
	for _, c := range page.Items {
		if c.Type != "GOVT" {
			t.Fatalf("unexpected type %q", c.Type)
		}
	}
}

func TestFetchPageFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.ErrorLevel)
	p, err := New(failingSource{}, catalog.Products, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, typeFilter := range []string{catalog.AllTypes, "laptops"} {
		page := p.FetchPage(context.Background(), 15, &datasource.Cursor{Value: 3, DocID: "x"}, typeFilter)
		if !page.Failed || len(page.Items) != 0 || page.NextCursor != nil {
			t.Fatalf("expected degraded page for %q, got %+v", typeFilter, page)
		}
	}

	if n := observed.Len(); n != 2 {
		t.Fatalf("expected 2 logged failures, got %d", n)
	}
}

func TestSortByNameUsesTitleForProducts(t *testing.T) {
	t.Parallel()

	items := []catalog.Candidate{
		{DocID: "1", Title: "iPhone 9"},
		{DocID: "2"},
		{DocID: "3", Title: "Apple Watch"},
		{DocID: "4", Title: "apple watch"},
	}
	SortByName(items, catalog.Products)

	var got []string
	for _, c := range items {
		got = append(got, c.DocID)
	}
	if diff := cmp.Diff([]string{"2", "3", "4", "1"}, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, catalog.Colleges); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := New(memory.New(""), catalog.Listing{Name: "broken"}); err == nil {
		t.Fatalf("expected error for incomplete listing")
	}
}
